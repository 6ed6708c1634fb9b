package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFiles are looked up in order when --config is not given
var DefaultConfigFiles = []string{".drover.toml", ".drover.yaml", ".drover.yml"}

// File is the pipeline configuration file
type File struct {
	Repository string         `toml:"repository,omitempty" yaml:"repository,omitempty"`
	Release    ReleaseSection `toml:"release" yaml:"release"`
	Build      BuildSection   `toml:"build" yaml:"build"`
	Source     Section        `toml:"source" yaml:"source"`
	Publish    Section        `toml:"publish" yaml:"publish"`
	Ledger     Section        `toml:"ledger" yaml:"ledger"`
}

// ReleaseSection configures the release step
type ReleaseSection struct {
	NotesDir   string `toml:"notes_dir" yaml:"notes_dir"`
	NotesExt   string `toml:"notes_ext" yaml:"notes_ext"`
	Draft      bool   `toml:"draft" yaml:"draft"`
	Prerelease bool   `toml:"prerelease" yaml:"prerelease"`
}

// BuildSection configures the setup and build steps
type BuildSection struct {
	Setup        []string `toml:"setup" yaml:"setup"`
	Tools        []string `toml:"tools" yaml:"tools"`
	Command      string   `toml:"command" yaml:"command"`
	Env          []string `toml:"env" yaml:"env"`
	ArtifactDir  string   `toml:"artifact_dir" yaml:"artifact_dir"`
	ArtifactGlob string   `toml:"artifact_glob" yaml:"artifact_glob"`
}

// DefaultFile is used when no configuration file exists: build a Python
// package from the working tree and upload it to the public index.
func DefaultFile() *File {
	def := model.DefaultPipelineConfig()
	return &File{
		Release: ReleaseSection{
			NotesDir: def.NotesDir,
			NotesExt: def.NotesExt,
		},
		Build: BuildSection{
			Setup:        []string{"python3 -m pip install --upgrade build"},
			Tools:        []string{"python3"},
			Command:      "python3 -m build",
			ArtifactDir:  def.ArtifactDir,
			ArtifactGlob: def.ArtifactGlob,
		},
		Source:  Section{TypeKey: "local", "local": map[string]any{}},
		Publish: Section{TypeKey: "pypi", "pypi": map[string]any{}},
		Ledger:  Section{TypeKey: "memory", "memory": map[string]any{}},
	}
}

// Pipeline selects the configuration file
type Pipeline struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Pipeline configuration file (.toml, .yaml or .yml)",
			Destination: &c.Path,
			Sources:     cli.EnvVars("DROVER_CONFIG"),
		},
	}
}

// Load reads the configured file. Without --config the default file names
// are tried and the built-in defaults are used when none exists.
func (c *Pipeline) Load() (*File, string, error) {
	if c.Path != "" {
		f, err := LoadFile(c.Path)
		return f, c.Path, err
	}

	for _, name := range DefaultConfigFiles {
		f, err := LoadFile(name)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, name, err
		}
	}

	return DefaultFile(), "", nil
}

// LoadFile decodes a TOML or YAML file by its extension. Unknown keys are errors.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path),
			goerr.T(types.ErrTagConfig),
		)
	}

	// a present file replaces the built-in defaults; PipelineConfig fills the layout keys it omits
	f := &File{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(f)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(f)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse configuration file",
			goerr.V("path", path),
			goerr.T(types.ErrTagConfig),
		)
	}

	return f, nil
}

// PipelineConfig converts the file into the pipeline settings
func (f *File) PipelineConfig() (model.PipelineConfig, error) {
	cfg := model.DefaultPipelineConfig()

	if f.Repository != "" {
		repo, err := model.ParseRepository(f.Repository)
		if err != nil {
			return cfg, err
		}
		cfg.Repo = repo
	}

	if f.Release.NotesDir != "" {
		cfg.NotesDir = f.Release.NotesDir
	}
	if f.Release.NotesExt != "" {
		cfg.NotesExt = f.Release.NotesExt
	}
	cfg.Draft = f.Release.Draft
	cfg.Prerelease = f.Release.Prerelease

	cfg.SetupCommands = f.Build.Setup
	cfg.Tools = f.Build.Tools
	cfg.BuildCommand = f.Build.Command
	cfg.BuildEnv = f.Build.Env
	if f.Build.ArtifactDir != "" {
		cfg.ArtifactDir = f.Build.ArtifactDir
	}
	if f.Build.ArtifactGlob != "" {
		cfg.ArtifactGlob = f.Build.ArtifactGlob
	}

	if filepath.IsAbs(cfg.NotesDir) || strings.HasPrefix(filepath.Clean(cfg.NotesDir), "..") {
		return cfg, goerr.New("notes_dir must be inside the repository",
			goerr.V("notes_dir", cfg.NotesDir),
			goerr.T(types.ErrTagConfig),
		)
	}
	if _, err := filepath.Match(cfg.ArtifactGlob, ""); err != nil {
		return cfg, goerr.Wrap(err, "invalid artifact_glob",
			goerr.V("artifact_glob", cfg.ArtifactGlob),
			goerr.T(types.ErrTagConfig),
		)
	}

	return cfg, nil
}
