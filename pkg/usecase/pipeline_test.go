package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/interfaces/mocks"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/memory"
	"github.com/m-mizutani/drover/pkg/infra/shell"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

const buildScript = `mkdir -p dist && printf 'sdist' > "dist/widget-${DROVER_VERSION}.tar.gz"`

var testRepo = model.Repository{Owner: "octo", Name: "widget"}

type fixture struct {
	dir       string
	host      *mocks.ReleaseHostMock
	publisher *mocks.PublisherMock
	ledger    *memory.Ledger
	notified  []*model.Run
	mu        sync.Mutex
	cfg       model.PipelineConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dir:    t.TempDir(),
		ledger: memory.New(),
		cfg:    model.DefaultPipelineConfig(),
	}
	f.cfg.BuildCommand = buildScript
	f.cfg.Tools = []string{"python3"}

	f.host = &mocks.ReleaseHostMock{
		GetReleaseFunc: func(ctx context.Context, repo model.Repository, id int64) (*model.Release, error) {
			return nil, nil
		},
		GetReleaseByTagFunc: func(ctx context.Context, repo model.Repository, tag model.Tag) (*model.Release, error) {
			return nil, nil
		},
		CreateReleaseFunc: func(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
			return &model.Release{
				ID:   100,
				Tag:  req.Tag,
				Name: req.Name,
				Body: req.Body,
				URL:  "https://github.com/octo/widget/releases/tag/" + req.Tag.String(),
			}, nil
		},
		UpdateReleaseBodyFunc: func(ctx context.Context, repo model.Repository, id int64, body string) (*model.Release, error) {
			return &model.Release{ID: id, Body: body}, nil
		},
	}
	f.publisher = &mocks.PublisherMock{
		NameFunc: func() string { return "pypi" },
		PublishFunc: func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
			return &model.PublishResult{Location: "widget==" + req.Version()}, nil
		},
	}
	return f
}

func (f *fixture) writeNotes(t *testing.T, tag, body string) {
	t.Helper()
	dir := filepath.Join(f.dir, "docs", "release_notes")
	gt.NoError(t, os.MkdirAll(dir, 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, tag+".rst"), []byte(body), 0600))
}

func (f *fixture) pipeline(extra ...usecase.PipelineOption) *usecase.Pipeline {
	opts := []usecase.PipelineOption{
		usecase.WithSource(usecase.NewLocalSource(f.dir)),
		usecase.WithRunner(shell.New()),
		usecase.WithReleaseHost(f.host),
		usecase.WithPublisher(f.publisher),
		usecase.WithLedger(f.ledger),
		usecase.WithNotifier(&mocks.NotifierMock{
			NotifyRunFunc: func(ctx context.Context, run *model.Run) error {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.notified = append(f.notified, run)
				return nil
			},
		}),
		usecase.WithLookPath(func(name string) (string, error) {
			return "/usr/bin/" + name, nil
		}),
	}
	return usecase.NewPipeline(f.cfg, append(opts, extra...)...)
}

func tagTrigger(tag string) model.Trigger {
	return model.Trigger{
		Kind:      model.TriggerTagPush,
		Ref:       "refs/tags/" + tag,
		Repo:      testRepo,
		CommitSHA: "abc123",
	}
}

func stepStatuses(run *model.Run) map[model.StepName]model.StepStatus {
	m := map[model.StepName]model.StepStatus{}
	for _, s := range run.Steps {
		m[s.Name] = s.Status
	}
	return m
}

func TestPipeline_InitialRelease(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(context.Background(), run)
	gt.NoError(t, err)

	gt.Value(t, run.Status).Equal(model.RunSucceeded)
	gt.Value(t, run.Tag).Equal(model.Tag("v1.2.3"))
	for _, s := range run.Steps {
		gt.Value(t, s.Status).Equal(model.StepSucceeded)
	}

	calls := f.host.CreateReleaseCalls()
	gt.Value(t, len(calls)).Equal(1)
	gt.Value(t, calls[0].Req.Name).Equal("v1.2.3")
	gt.Value(t, calls[0].Req.Body).Equal("Initial release.")
	gt.Value(t, calls[0].Req.CommitSHA).Equal("abc123")

	published := f.publisher.PublishCalls()
	gt.Value(t, len(published)).Equal(1)
	gt.Value(t, published[0].Req.Version()).Equal("1.2.3")
	gt.Value(t, published[0].Req.Artifact.Name).Equal("widget-1.2.3.tar.gz")
	gt.Value(t, published[0].Req.Release.ID).Equal(int64(100))
	gt.Value(t, published[0].Req.Artifact.SHA256).NotEqual("")

	stored, err := f.ledger.GetRun(context.Background(), run.ID)
	gt.NoError(t, err)
	gt.Value(t, stored.Status).Equal(model.RunSucceeded)

	record, err := f.ledger.GetRecord(context.Background(), model.LedgerKey(testRepo, "v1.2.3"))
	gt.NoError(t, err)
	gt.Value(t, record.ReleaseID).Equal(int64(100))
	gt.True(t, record.HasPublished("widget-1.2.3.tar.gz"))

	gt.Value(t, len(f.notified)).Equal(1)
	gt.Value(t, f.notified[0].Status).Equal(model.RunSucceeded)
}

func TestPipeline_NotesBodyIsVerbatim(t *testing.T) {
	f := newFixture(t)
	body := "Changes\n=======\n\n* first\n\n"
	f.writeNotes(t, "v2.0.0", body)

	gt.NoError(t, f.pipeline().Execute(context.Background(), model.NewRun(tagTrigger("v2.0.0"))))
	gt.Value(t, f.host.CreateReleaseCalls()[0].Req.Body).Equal(body)
}

func TestPipeline_MissingNotes(t *testing.T) {
	f := newFixture(t)

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(context.Background(), run)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNotesMissing))

	gt.Value(t, run.Status).Equal(model.RunFailed)
	gt.Value(t, run.FailedStep()).Equal(model.StepRelease)
	gt.Value(t, stepStatuses(run)[model.StepPublish]).Equal(model.StepSkipped)
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(0)
}

func TestPipeline_BuildFailure(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	f.cfg.BuildCommand = "echo compile error >&2; exit 1"

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(context.Background(), run)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagBuildFailed))

	statuses := stepStatuses(run)
	gt.Value(t, statuses[model.StepBuild]).Equal(model.StepFailed)
	gt.Value(t, statuses[model.StepRelease]).Equal(model.StepSkipped)
	gt.Value(t, statuses[model.StepPublish]).Equal(model.StepSkipped)
	gt.Value(t, len(f.host.GetReleaseByTagCalls())).Equal(0)
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(0)

	gt.Value(t, len(f.notified)).Equal(1)
	gt.Value(t, f.notified[0].FailedStep()).Equal(model.StepBuild)
}

func TestPipeline_NoArtifacts(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	f.cfg.BuildCommand = "mkdir -p dist"

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(context.Background(), run)
	gt.True(t, goerr.HasTag(err, types.ErrTagBuildFailed))
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)
}

func TestPipeline_StaleArtifactsIgnored(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	gt.NoError(t, os.MkdirAll(filepath.Join(f.dir, "dist"), 0755))
	for _, name := range []string{"widget-1.2.2.tar.gz", "widget-1.2.30.tar.gz", "widget-11.2.3.tar.gz"} {
		gt.NoError(t, os.WriteFile(filepath.Join(f.dir, "dist", name), []byte("old"), 0600))
	}

	gt.NoError(t, f.pipeline().Execute(context.Background(), model.NewRun(tagTrigger("v1.2.3"))))

	published := f.publisher.PublishCalls()
	gt.Value(t, len(published)).Equal(1)
	gt.Value(t, published[0].Req.Artifact.Name).Equal("widget-1.2.3.tar.gz")
}

func TestPipeline_InvalidTag(t *testing.T) {
	for _, ref := range []string{"refs/tags/1.2.3", "refs/tags/v1.2", "refs/heads/main", "refs/tags/v1.2.3-rc1"} {
		t.Run(ref, func(t *testing.T) {
			f := newFixture(t)
			run := model.NewRun(model.Trigger{Kind: model.TriggerTagPush, Ref: ref, Repo: testRepo})

			err := f.pipeline().Execute(context.Background(), run)
			gt.True(t, goerr.HasTag(err, types.ErrTagInvalidTag))
			gt.Value(t, run.FailedStep()).Equal(model.StepTag)
			gt.Value(t, stepStatuses(run)[model.StepBuild]).Equal(model.StepSkipped)
		})
	}
}

func TestPipeline_SetupFailure(t *testing.T) {
	t.Run("missing tool", func(t *testing.T) {
		f := newFixture(t)
		p := usecase.NewPipeline(f.cfg,
			usecase.WithSource(usecase.NewLocalSource(f.dir)),
			usecase.WithRunner(shell.New()),
			usecase.WithLookPath(func(name string) (string, error) {
				return "", errors.New("executable file not found in $PATH")
			}),
		)

		run := model.NewRun(tagTrigger("v1.2.3"))
		err := p.Execute(context.Background(), run)
		gt.True(t, goerr.HasTag(err, types.ErrTagSetupFailed))
		gt.Value(t, run.FailedStep()).Equal(model.StepSetup)
	})

	t.Run("setup command fails", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.SetupCommands = []string{"exit 2"}

		run := model.NewRun(tagTrigger("v1.2.3"))
		err := f.pipeline().Execute(context.Background(), run)
		gt.True(t, goerr.HasTag(err, types.ErrTagSetupFailed))
	})
}

func TestPipeline_ManualDispatchRehearsal(t *testing.T) {
	f := newFixture(t)

	run := model.NewRun(model.Trigger{Kind: model.TriggerManual, Repo: testRepo})
	err := f.pipeline().Execute(context.Background(), run)
	gt.NoError(t, err)

	gt.Value(t, run.Status).Equal(model.RunSucceeded)
	gt.Value(t, run.Tag).Equal(model.RehearsalTag)
	gt.Value(t, run.Release).NotNil()
	gt.True(t, run.Release.DryRun)
	gt.Value(t, run.Artifacts).Equal([]string{"widget-0.0.0.tar.gz"})

	gt.Value(t, len(f.host.GetReleaseByTagCalls())).Equal(0)
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(0)
}

func TestPipeline_DryRunStillRequiresNotes(t *testing.T) {
	f := newFixture(t)
	trigger := tagTrigger("v1.2.3")
	trigger.DryRun = true

	run := model.NewRun(trigger)
	err := f.pipeline().Execute(context.Background(), run)
	gt.True(t, goerr.HasTag(err, types.ErrTagNotesMissing))

	f.writeNotes(t, "v1.2.3", "Initial release.")
	run = model.NewRun(trigger)
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(0)
}

func TestPipeline_RerunConverges(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")

	// First attempt creates the release but the index is down
	f.publisher.PublishFunc = func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
		return nil, errors.New("503 Service Unavailable")
	}
	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(context.Background(), run)
	gt.True(t, goerr.HasTag(err, types.ErrTagPublishFailed))
	gt.Value(t, run.FailedStep()).Equal(model.StepPublish)

	// The release now exists with an outdated body
	f.host.GetReleaseByTagFunc = func(ctx context.Context, repo model.Repository, tag model.Tag) (*model.Release, error) {
		return &model.Release{ID: 100, Tag: tag, Body: "Draft notes"}, nil
	}
	f.publisher.PublishFunc = func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
		return &model.PublishResult{AlreadyExists: false}, nil
	}

	run = model.NewRun(tagTrigger("v1.2.3"))
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))

	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(1)
	updates := f.host.UpdateReleaseBodyCalls()
	gt.Value(t, len(updates)).Equal(1)
	gt.Value(t, updates[0].ID).Equal(int64(100))
	gt.Value(t, updates[0].Body).Equal("Initial release.")
	gt.True(t, run.Release.Reused)

	// A third run finds everything done and uploads nothing
	before := len(f.publisher.PublishCalls())
	run = model.NewRun(tagTrigger("v1.2.3"))
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(before)
	gt.Value(t, run.Published).Equal([]string{"widget-1.2.3.tar.gz"})
}

func TestPipeline_ArtifactAlreadyAtIndex(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	f.publisher.PublishFunc = func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
		return &model.PublishResult{AlreadyExists: true}, nil
	}

	run := model.NewRun(tagTrigger("v1.2.3"))
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))
	gt.Value(t, run.Published).Equal([]string{"widget-1.2.3.tar.gz"})
}

func TestPipeline_MissingDependency(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	p := usecase.NewPipeline(f.cfg,
		usecase.WithSource(usecase.NewLocalSource(f.dir)),
		usecase.WithRunner(shell.New()),
		usecase.WithLookPath(func(name string) (string, error) { return name, nil }),
	)

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := p.Execute(context.Background(), run)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	gt.Value(t, run.FailedStep()).Equal(model.StepRelease)
}

func TestPipeline_ConcurrentRunsForSameTag(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")
	f.cfg.BuildCommand = "true"
	gt.NoError(t, os.MkdirAll(filepath.Join(f.dir, "dist"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(f.dir, "dist", "widget-1.2.3.tar.gz"), []byte("sdist"), 0600))

	var (
		mu      sync.Mutex
		created *model.Release
	)
	f.host.GetReleaseByTagFunc = func(ctx context.Context, repo model.Repository, tag model.Tag) (*model.Release, error) {
		mu.Lock()
		defer mu.Unlock()
		return created, nil
	}
	f.host.CreateReleaseFunc = func(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
		mu.Lock()
		defer mu.Unlock()
		created = &model.Release{ID: 100, Tag: req.Tag, Name: req.Name, Body: req.Body}
		return created, nil
	}

	p := f.pipeline()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Execute(context.Background(), model.NewRun(tagTrigger("v1.2.3")))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		gt.NoError(t, err)
	}
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(1)
	gt.Value(t, len(f.publisher.PublishCalls())).Equal(1)
}

func TestPipeline_RerunFindsDraftRelease(t *testing.T) {
	f := newFixture(t)
	f.cfg.Draft = true
	f.writeNotes(t, "v1.2.3", "Initial release.")

	// Lookup by tag never sees drafts
	var draft *model.Release
	f.host.CreateReleaseFunc = func(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
		gt.True(t, req.Draft)
		draft = &model.Release{ID: 200, Tag: req.Tag, Name: req.Name, Body: req.Body}
		return draft, nil
	}
	f.host.GetReleaseFunc = func(ctx context.Context, repo model.Repository, id int64) (*model.Release, error) {
		if draft != nil && draft.ID == id {
			return draft, nil
		}
		return nil, nil
	}
	f.publisher.PublishFunc = func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
		return nil, errors.New("503 Service Unavailable")
	}

	err := f.pipeline().Execute(context.Background(), model.NewRun(tagTrigger("v1.2.3")))
	gt.True(t, goerr.HasTag(err, types.ErrTagPublishFailed))

	f.publisher.PublishFunc = func(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
		return &model.PublishResult{}, nil
	}
	run := model.NewRun(tagTrigger("v1.2.3"))
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))

	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(1)
	calls := f.host.GetReleaseCalls()
	gt.Value(t, len(calls)).Equal(1)
	gt.Value(t, calls[0].ID).Equal(int64(200))
	gt.True(t, run.Release.Reused)
	gt.Value(t, run.Release.ID).Equal(int64(200))
}

func TestPipeline_RecordedReleaseDeleted(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")

	record := model.NewLedgerRecord(testRepo, "v1.2.3")
	record.ReleaseID = 99
	gt.NoError(t, f.ledger.PutRecord(context.Background(), record))

	run := model.NewRun(tagTrigger("v1.2.3"))
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))

	gt.Value(t, len(f.host.GetReleaseCalls())).Equal(1)
	gt.Value(t, len(f.host.GetReleaseByTagCalls())).Equal(1)
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(1)
	gt.Value(t, run.Release.ID).Equal(int64(100))
}

func TestPipeline_CancelledDuringBuild(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &mocks.CommandRunnerMock{
		RunFunc: func(ctx context.Context, dir, command string, env []string) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		},
	}

	var notifyErr error
	notifier := &mocks.NotifierMock{
		NotifyRunFunc: func(ctx context.Context, run *model.Run) error {
			notifyErr = ctx.Err()
			return nil
		},
	}

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline(usecase.WithRunner(runner), usecase.WithNotifier(notifier)).Execute(ctx, run)
	gt.Error(t, err)

	gt.Value(t, run.Status).Equal(model.RunFailed)
	gt.Value(t, run.FailedStep()).Equal(model.StepBuild)
	gt.Value(t, stepStatuses(run)[model.StepRelease]).Equal(model.StepSkipped)
	gt.Value(t, len(f.host.CreateReleaseCalls())).Equal(0)

	gt.Value(t, len(notifier.NotifyRunCalls())).Equal(1)
	gt.NoError(t, notifyErr)

	stored, err := f.ledger.GetRun(context.Background(), run.ID)
	gt.NoError(t, err)
	gt.Value(t, stored.Status).Equal(model.RunFailed)
	gt.False(t, stored.FinishedAt.IsZero())
}

func TestPipeline_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := model.NewRun(tagTrigger("v1.2.3"))
	err := f.pipeline().Execute(ctx, run)
	gt.True(t, errors.Is(err, context.Canceled))
	gt.Value(t, run.FailedStep()).Equal(model.StepCheckout)
	gt.Value(t, stepStatuses(run)[model.StepSetup]).Equal(model.StepSkipped)
}

func TestPipeline_RunWithoutSteps(t *testing.T) {
	f := newFixture(t)
	f.writeNotes(t, "v1.2.3", "Initial release.")

	run := &model.Run{Trigger: tagTrigger("v1.2.3")}
	gt.NoError(t, f.pipeline().Execute(context.Background(), run))

	gt.Value(t, run.Status).Equal(model.RunSucceeded)
	gt.Value(t, len(run.Steps)).Equal(len(model.PipelineSteps))
	for _, name := range model.PipelineSteps {
		gt.Value(t, stepStatuses(run)[name]).Equal(model.StepSucceeded)
	}
}
