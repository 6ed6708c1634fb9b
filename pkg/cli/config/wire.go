package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/firestore"
	"github.com/m-mizutani/drover/pkg/infra/gcs"
	githubinfra "github.com/m-mizutani/drover/pkg/infra/github"
	"github.com/m-mizutani/drover/pkg/infra/memory"
	"github.com/m-mizutani/drover/pkg/infra/pypi"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

// LocalSourceConfig is the [source.local] block
type LocalSourceConfig struct {
	Dir string `toml:"dir"`
}

// GitHubSourceConfig is the [source.github] block
type GitHubSourceConfig struct{}

// PyPIConfig is the [publish.pypi] block
type PyPIConfig struct {
	RepositoryURL string `toml:"repository_url"`
	Username      string `toml:"username"`
	PackageName   string `toml:"package_name"`
}

// GCSConfig is the [publish.gcs] block
type GCSConfig struct {
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	CredentialsFile string `toml:"credentials_file"`
}

// GitHubAssetConfig is the [publish.github] block
type GitHubAssetConfig struct{}

// MemoryLedgerConfig is the [ledger.memory] block
type MemoryLedgerConfig struct{}

// FirestoreConfig is the [ledger.firestore] block
type FirestoreConfig struct {
	ProjectID        string `toml:"project_id"`
	DatabaseID       string `toml:"database_id"`
	CollectionPrefix string `toml:"collection_prefix"`
	CredentialsFile  string `toml:"credentials_file"`
}

// Components are the pipeline dependencies built from the configuration
type Components struct {
	Source     interfaces.SourceFetcher
	Publisher  interfaces.Publisher
	Ledger     interfaces.LedgerStore
	LedgerName string

	// GitHub is nil when no GitHub credential is configured
	GitHub *githubinfra.Client

	closers []io.Closer
}

// Close releases the clients held by the components
func (c *Components) Close(ctx context.Context) {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			ctxlog.From(ctx).Warn("failed to close client", slog.Any("error", err))
		}
	}
}

// Wiring builds the selectable components from the file and the credentials
type Wiring struct {
	GitHub  *GitHub
	Publish *Publish

	client *githubinfra.Client
}

func (w *Wiring) githubClient() (*githubinfra.Client, error) {
	if w.client != nil {
		return w.client, nil
	}
	if w.GitHub == nil || !w.GitHub.Configured() {
		return nil, goerr.New("GitHub credentials are required by the selected configuration",
			goerr.T(types.ErrTagConfig),
		)
	}
	client, err := w.GitHub.NewClient()
	if err != nil {
		return nil, err
	}
	w.client = client
	return client, nil
}

func (w *Wiring) publishToken() string {
	if w.Publish == nil {
		return ""
	}
	return w.Publish.Token
}

// Sources returns the implementations of the [source] section
func (w *Wiring) Sources() *Registry[interfaces.SourceFetcher] {
	return NewRegistry[interfaces.SourceFetcher]("source").
		Register(Impl[interfaces.SourceFetcher]{
			Name:      "local",
			NewConfig: func() any { return &LocalSourceConfig{Dir: "."} },
			Build: func(_ context.Context, cfg any) (interfaces.SourceFetcher, error) {
				return usecase.NewLocalSource(cfg.(*LocalSourceConfig).Dir), nil
			},
		}).
		Register(Impl[interfaces.SourceFetcher]{
			Name:      "github",
			NewConfig: func() any { return &GitHubSourceConfig{} },
			Build: func(_ context.Context, _ any) (interfaces.SourceFetcher, error) {
				client, err := w.githubClient()
				if err != nil {
					return nil, err
				}
				return usecase.NewGitHubSource(client), nil
			},
		})
}

// Publishers returns the implementations of the [publish] section
func (w *Wiring) Publishers() *Registry[interfaces.Publisher] {
	return NewRegistry[interfaces.Publisher]("publish").
		Register(Impl[interfaces.Publisher]{
			Name: "pypi",
			NewConfig: func() any {
				return &PyPIConfig{
					RepositoryURL: pypi.DefaultRepositoryURL,
					Username:      pypi.TokenUsername,
				}
			},
			Build: func(_ context.Context, cfg any) (interfaces.Publisher, error) {
				c := cfg.(*PyPIConfig)
				var opts []pypi.Option
				if c.RepositoryURL != "" {
					opts = append(opts, pypi.WithRepositoryURL(c.RepositoryURL))
				}
				if c.Username != "" {
					opts = append(opts, pypi.WithUsername(c.Username))
				}
				if c.PackageName != "" {
					opts = append(opts, pypi.WithPackageName(c.PackageName))
				}
				return pypi.New(w.publishToken(), opts...), nil
			},
		}).
		Register(Impl[interfaces.Publisher]{
			Name:      "gcs",
			NewConfig: func() any { return &GCSConfig{} },
			Build: func(ctx context.Context, cfg any) (interfaces.Publisher, error) {
				c := cfg.(*GCSConfig)
				if c.Bucket == "" {
					return nil, goerr.New("publish.gcs.bucket is required", goerr.T(types.ErrTagConfig))
				}
				return gcs.New(ctx, c.Bucket, c.Prefix, c.CredentialsFile)
			},
		}).
		Register(Impl[interfaces.Publisher]{
			Name:      "github",
			NewConfig: func() any { return &GitHubAssetConfig{} },
			Build: func(_ context.Context, _ any) (interfaces.Publisher, error) {
				client, err := w.githubClient()
				if err != nil {
					return nil, err
				}
				return githubinfra.NewAssetPublisher(client), nil
			},
		})
}

// Ledgers returns the implementations of the [ledger] section
func (w *Wiring) Ledgers() *Registry[interfaces.LedgerStore] {
	return NewRegistry[interfaces.LedgerStore]("ledger").
		Register(Impl[interfaces.LedgerStore]{
			Name:      "memory",
			NewConfig: func() any { return &MemoryLedgerConfig{} },
			Build: func(_ context.Context, _ any) (interfaces.LedgerStore, error) {
				return memory.New(), nil
			},
		}).
		Register(Impl[interfaces.LedgerStore]{
			Name:      "firestore",
			NewConfig: func() any { return &FirestoreConfig{CollectionPrefix: "drover_"} },
			Build: func(ctx context.Context, cfg any) (interfaces.LedgerStore, error) {
				c := cfg.(*FirestoreConfig)
				if c.ProjectID == "" {
					return nil, goerr.New("ledger.firestore.project_id is required", goerr.T(types.ErrTagConfig))
				}
				return firestore.New(ctx, c.ProjectID, c.DatabaseID, c.CollectionPrefix, c.CredentialsFile)
			},
		})
}

// DefaultsFile returns a file carrying every implementation's default block
// with no type selected
func (w *Wiring) DefaultsFile() (*File, error) {
	f := DefaultFile()

	var err error
	if f.Source, err = w.Sources().Defaults(); err != nil {
		return nil, err
	}
	if f.Publish, err = w.Publishers().Defaults(); err != nil {
		return nil, err
	}
	if f.Ledger, err = w.Ledgers().Defaults(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate resolves every section without building anything
func (w *Wiring) Validate(f *File) error {
	if _, _, err := w.Sources().Resolve(f.Source); err != nil {
		return err
	}
	if _, _, err := w.Publishers().Resolve(f.Publish); err != nil {
		return err
	}
	if _, _, err := w.Ledgers().Resolve(f.Ledger); err != nil {
		return err
	}
	_, err := f.PipelineConfig()
	return err
}

// Resolved returns the file as the pipeline sees it: layout defaults filled
// in and every section reduced to its selected, default-merged block
func (w *Wiring) Resolved(f *File) (*File, error) {
	cfg, err := f.PipelineConfig()
	if err != nil {
		return nil, err
	}

	out := &File{
		Repository: f.Repository,
		Release: ReleaseSection{
			NotesDir:   cfg.NotesDir,
			NotesExt:   cfg.NotesExt,
			Draft:      cfg.Draft,
			Prerelease: cfg.Prerelease,
		},
		Build: BuildSection{
			Setup:        cfg.SetupCommands,
			Tools:        cfg.Tools,
			Command:      cfg.BuildCommand,
			Env:          cfg.BuildEnv,
			ArtifactDir:  cfg.ArtifactDir,
			ArtifactGlob: cfg.ArtifactGlob,
		},
	}

	if out.Source, err = w.Sources().Normalize(f.Source); err != nil {
		return nil, err
	}
	if out.Publish, err = w.Publishers().Normalize(f.Publish); err != nil {
		return nil, err
	}
	if out.Ledger, err = w.Ledgers().Normalize(f.Ledger); err != nil {
		return nil, err
	}
	return out, nil
}

// Build creates the components selected by the file
func (w *Wiring) Build(ctx context.Context, f *File) (*Components, error) {
	c := &Components{}
	fail := func(err error) (*Components, error) {
		c.Close(ctx)
		return nil, err
	}

	src, err := w.Sources().Build(ctx, f.Source)
	if err != nil {
		return fail(err)
	}
	c.Source = src

	pub, err := w.Publishers().Build(ctx, f.Publish)
	if err != nil {
		return fail(err)
	}
	c.Publisher = pub
	if closer, ok := pub.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	ledgerImpl, _, err := w.Ledgers().Resolve(f.Ledger)
	if err != nil {
		return fail(err)
	}
	ledger, err := w.Ledgers().Build(ctx, f.Ledger)
	if err != nil {
		return fail(err)
	}
	c.Ledger = ledger
	c.LedgerName = ledgerImpl.Name
	if closer, ok := ledger.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	if w.GitHub != nil && w.GitHub.Configured() {
		client, err := w.githubClient()
		if err != nil {
			return fail(err)
		}
		c.GitHub = client
	}

	return c, nil
}
