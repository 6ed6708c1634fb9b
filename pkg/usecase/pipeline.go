package usecase

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// PipelineOption is a functional option for the release pipeline
type PipelineOption func(*Pipeline)

// WithSource sets how repository contents are obtained
func WithSource(source interfaces.SourceFetcher) PipelineOption {
	return func(p *Pipeline) {
		p.source = source
	}
}

// WithRunner sets the runner for setup and build commands
func WithRunner(runner interfaces.CommandRunner) PipelineOption {
	return func(p *Pipeline) {
		p.runner = runner
	}
}

// WithReleaseHost sets where releases are created
func WithReleaseHost(host interfaces.ReleaseHost) PipelineOption {
	return func(p *Pipeline) {
		p.host = host
	}
}

// WithPublisher sets the package index artifacts are published to
func WithPublisher(publisher interfaces.Publisher) PipelineOption {
	return func(p *Pipeline) {
		p.publisher = publisher
	}
}

// WithLedger sets the store of run records and release progress
func WithLedger(ledger interfaces.LedgerStore) PipelineOption {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// WithNotifier sets the notifier told about every finished run
func WithNotifier(notifier interfaces.Notifier) PipelineOption {
	return func(p *Pipeline) {
		p.notifier = notifier
	}
}

// WithLookPath replaces exec.LookPath for tool verification
func WithLookPath(lookPath func(string) (string, error)) PipelineOption {
	return func(p *Pipeline) {
		p.lookPath = lookPath
	}
}

// Pipeline runs the release steps: checkout, setup, tag, build, release, publish
type Pipeline struct {
	cfg       model.PipelineConfig
	source    interfaces.SourceFetcher
	runner    interfaces.CommandRunner
	host      interfaces.ReleaseHost
	publisher interfaces.Publisher
	ledger    interfaces.LedgerStore
	notifier  interfaces.Notifier
	lookPath  func(string) (string, error)

	locks *keyLocks
}

var _ interfaces.PipelineUseCase = (*Pipeline)(nil)

// NewPipeline creates a release pipeline
func NewPipeline(cfg model.PipelineConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		lookPath: exec.LookPath,
		locks:    newKeyLocks(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// runState carries values between steps of one run
type runState struct {
	run       *model.Run
	workspace *model.Workspace
	tag       model.Tag
	repo      model.Repository
	rehearsal bool
	dryRun    bool
	artifacts []*model.Artifact
	release   *model.Release
	record    *model.LedgerRecord
	unlock    func()
}

type stepFunc func(ctx context.Context, st *runState) (string, error)

// Execute runs the pipeline for the run. Any step failure is fatal: later
// steps are marked skipped and the error is returned.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	run.EnsureSteps()
	logger := ctxlog.From(ctx).With("run_id", run.ID.String())
	ctx = ctxlog.With(ctx, logger)

	st := &runState{
		run:    run,
		dryRun: run.Trigger.DryRun,
	}
	defer p.cleanup(ctx, st)

	steps := map[model.StepName]stepFunc{
		model.StepCheckout: p.checkout,
		model.StepSetup:    p.setup,
		model.StepTag:      p.deriveTag,
		model.StepBuild:    p.build,
		model.StepRelease:  p.createRelease,
		model.StepPublish:  p.publish,
	}

	logger.Info("Starting release pipeline",
		"kind", run.Trigger.Kind,
		"ref", run.Trigger.Ref,
		"repository", run.Trigger.Repo.FullName(),
		"dry_run", run.Trigger.DryRun,
	)

	run.Status = model.RunRunning
	p.saveRun(ctx, run)

	var runErr error
	for _, name := range model.PipelineSteps {
		result := run.Step(name)
		if runErr != nil {
			result.Status = model.StepSkipped
			continue
		}

		result.Status = model.StepRunning
		result.StartedAt = time.Now().UTC()
		p.saveRun(ctx, run)

		var msg string
		var err error
		if cause := context.Cause(ctx); cause != nil {
			err = goerr.Wrap(cause, "run cancelled before the step started")
		} else {
			msg, err = steps[name](ctx, st)
		}
		result.FinishedAt = time.Now().UTC()
		result.Message = msg

		if err != nil {
			result.Status = model.StepFailed
			if result.Message == "" {
				result.Message = err.Error()
			}
			runErr = goerr.Wrap(err, "release pipeline failed", goerr.V("step", name))
			logger.Error("Pipeline step failed", "step", name, "error", err)
			continue
		}

		result.Status = model.StepSucceeded
		logger.Info("Pipeline step succeeded", "step", name, "message", msg)
	}

	// the outcome is recorded and announced even when the run was cancelled
	ctx = context.WithoutCancel(ctx)

	run.FinishedAt = time.Now().UTC()
	if runErr != nil {
		run.Status = model.RunFailed
		run.Error = runErr.Error()
	} else {
		run.Status = model.RunSucceeded
	}
	p.saveRun(ctx, run)

	if p.notifier != nil {
		if err := p.notifier.NotifyRun(ctx, run.Clone()); err != nil {
			logger.Warn("Failed to notify run result", "error", err)
		}
	}

	logger.Info("Release pipeline finished",
		"status", run.Status,
		"tag", run.Tag,
		"failed_step", run.FailedStep(),
	)

	return runErr
}

func (p *Pipeline) saveRun(ctx context.Context, run *model.Run) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.PutRun(ctx, run.Clone()); err != nil {
		ctxlog.From(ctx).Warn("Failed to save run record", "error", err)
	}
}

func (p *Pipeline) cleanup(ctx context.Context, st *runState) {
	logger := ctxlog.From(ctx)

	if st.unlock != nil {
		st.unlock()
	}

	ws := st.workspace
	if ws == nil || !ws.Temporary || ws.Root == "" {
		return
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		logger.Warn("Failed to clean up temporary directory",
			"temp_dir", ws.Root,
			"error", err,
		)
		return
	}
	logger.Debug("Cleaned up temporary directory", "temp_dir", ws.Root)
}

// keyLocks serializes runs that touch the same release
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func requireConfigured(name string, v any) error {
	if v == nil {
		return goerr.New("pipeline dependency is not configured",
			goerr.V("dependency", name),
			goerr.T(types.ErrTagConfig),
		)
	}
	return nil
}
