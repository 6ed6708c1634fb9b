package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

const tomlConfig = `
repository = "octo/widget"

[release]
notes_dir = "changes"
notes_ext = "md"
draft = true

[build]
setup = ["pip install build"]
tools = ["python3"]
command = "python3 -m build"
env = ["SOURCE_DATE_EPOCH=0"]

[source]
type = "local"
[source.local]
dir = "."

[publish]
type = "pypi"
[publish.pypi]
repository_url = "https://test.pypi.org/legacy/"
package_name = "widget"

[ledger]
type = "memory"
[ledger.memory]
`

const yamlConfig = `
release:
  notes_dir: docs/release_notes
build:
  command: make dist
  artifact_glob: "*.whl"
source:
  type: local
  local: {}
publish:
  type: gcs
  gcs:
    bucket: releases
    prefix: widget
  pypi: {}
ledger:
  type: memory
  memory:
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_TOML(t *testing.T) {
	f, err := config.LoadFile(writeConfig(t, "drover.toml", tomlConfig))
	gt.NoError(t, err)

	cfg, err := f.PipelineConfig()
	gt.NoError(t, err)
	gt.Value(t, cfg.Repo.FullName()).Equal("octo/widget")
	gt.Value(t, cfg.NotesDir).Equal("changes")
	gt.Value(t, cfg.NotesExt).Equal("md")
	gt.True(t, cfg.Draft)
	gt.False(t, cfg.Prerelease)
	gt.Value(t, cfg.SetupCommands).Equal([]string{"pip install build"})
	gt.Value(t, cfg.BuildEnv).Equal([]string{"SOURCE_DATE_EPOCH=0"})
	gt.Value(t, cfg.ArtifactDir).Equal("dist")

	wiring := &config.Wiring{Publish: &config.Publish{Token: "pypi-secret"}}
	gt.NoError(t, wiring.Validate(f))

	components, err := wiring.Build(context.Background(), f)
	gt.NoError(t, err)
	defer components.Close(context.Background())
	gt.Value(t, components.Publisher.Name()).Equal("pypi")
	gt.Value(t, components.LedgerName).Equal("memory")
	_, ok := components.Ledger.(*memory.Ledger)
	gt.True(t, ok)
	gt.Value(t, components.GitHub).Nil()
}

func TestLoadFile_YAML(t *testing.T) {
	f, err := config.LoadFile(writeConfig(t, "drover.yaml", yamlConfig))
	gt.NoError(t, err)

	cfg, err := f.PipelineConfig()
	gt.NoError(t, err)
	gt.True(t, cfg.Repo.IsZero())
	gt.Value(t, cfg.BuildCommand).Equal("make dist")
	gt.Value(t, cfg.ArtifactGlob).Equal("*.whl")
	gt.Value(t, cfg.NotesExt).Equal("rst")

	wiring := &config.Wiring{}
	gt.NoError(t, wiring.Validate(f))
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		_, err := config.LoadFile(writeConfig(t, "drover.toml", "[build]\ncomand = \"make\"\n"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("malformed repository", func(t *testing.T) {
		f, err := config.LoadFile(writeConfig(t, "drover.toml", "repository = \"widget\"\n"))
		gt.NoError(t, err)
		_, err = f.PipelineConfig()
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("notes outside the repository", func(t *testing.T) {
		f, err := config.LoadFile(writeConfig(t, "drover.toml", "[release]\nnotes_dir = \"../notes\"\n"))
		gt.NoError(t, err)
		_, err = f.PipelineConfig()
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("source section without type", func(t *testing.T) {
		f, err := config.LoadFile(writeConfig(t, "drover.toml", "[source.local]\ndir = \".\"\n"))
		gt.NoError(t, err)
		gt.True(t, goerr.HasTag((&config.Wiring{}).Validate(f), types.ErrTagConfig))
	})
}

func TestWiring_GitHubRequiresCredentials(t *testing.T) {
	f := config.DefaultFile()
	f.Source = config.Section{"type": "github", "github": map[string]any{}}

	_, err := (&config.Wiring{GitHub: &config.GitHub{}}).Build(context.Background(), f)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestPipeline_LoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	gt.NoError(t, err)
	gt.NoError(t, os.Chdir(t.TempDir()))
	defer func() { gt.NoError(t, os.Chdir(wd)) }()

	f, path, err := (&config.Pipeline{}).Load()
	gt.NoError(t, err)
	gt.Value(t, path).Equal("")
	gt.Value(t, f.Build.Command).Equal("python3 -m build")
	gt.NoError(t, (&config.Wiring{}).Validate(f))
}

func TestWiring_DefaultsFile(t *testing.T) {
	f, err := (&config.Wiring{}).DefaultsFile()
	gt.NoError(t, err)
	gt.Value(t, f.Publish["type"]).Equal("")

	pypiBlock, ok := f.Publish["pypi"].(map[string]any)
	gt.True(t, ok)
	gt.Value(t, pypiBlock["username"]).Equal("__token__")

	// an unselected type is rejected until the operator picks one
	gt.Error(t, (&config.Wiring{}).Validate(f))
}

func TestWiring_Resolved(t *testing.T) {
	t.Run("merges block and layout defaults", func(t *testing.T) {
		f, err := config.LoadFile(writeConfig(t, "drover.toml", tomlConfig))
		gt.NoError(t, err)

		resolved, err := (&config.Wiring{}).Resolved(f)
		gt.NoError(t, err)

		gt.Value(t, resolved.Repository).Equal("octo/widget")
		gt.Value(t, resolved.Release.NotesDir).Equal("changes")
		gt.Value(t, resolved.Build.ArtifactDir).Equal("dist")
		gt.Value(t, resolved.Build.ArtifactGlob).Equal("*")

		pypiBlock, ok := resolved.Publish["pypi"].(map[string]any)
		gt.True(t, ok)
		gt.Value(t, pypiBlock["repository_url"]).Equal("https://test.pypi.org/legacy/")
		gt.Value(t, pypiBlock["username"]).Equal("__token__")
		gt.Value(t, pypiBlock["package_name"]).Equal("widget")

		local, ok := resolved.Source["local"].(map[string]any)
		gt.True(t, ok)
		gt.Value(t, local["dir"]).Equal(".")
	})

	t.Run("drops unselected blocks", func(t *testing.T) {
		f, err := config.LoadFile(writeConfig(t, "drover.yaml", yamlConfig))
		gt.NoError(t, err)

		resolved, err := (&config.Wiring{}).Resolved(f)
		gt.NoError(t, err)

		gt.Value(t, resolved.Publish["type"]).Equal("gcs")
		_, ok := resolved.Publish["pypi"]
		gt.False(t, ok)
		gt.Value(t, resolved.Release.NotesExt).Equal("rst")
		gt.Value(t, resolved.Build.ArtifactGlob).Equal("*.whl")

		// the resolved file loads back to the same pipeline settings
		want, err := f.PipelineConfig()
		gt.NoError(t, err)
		got, err := resolved.PipelineConfig()
		gt.NoError(t, err)
		gt.Value(t, got).Equal(want)
	})

	t.Run("rejects an unselected type", func(t *testing.T) {
		f, err := (&config.Wiring{}).DefaultsFile()
		gt.NoError(t, err)
		_, err = (&config.Wiring{}).Resolved(f)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})
}
