package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

type webhookUseCase struct {
	pipeline interfaces.PipelineUseCase
	ledger   interfaces.LedgerStore
	dispatch func(ctx context.Context, handler func(ctx context.Context) error)

	// in-flight runs by ledger key; a tag push delivers both push and create
	mu       sync.Mutex
	inflight map[string]*model.Run
}

// WebhookOption is a functional option for the webhook use case
type WebhookOption func(*webhookUseCase)

// WithLedgerStore records accepted runs before they start
func WithLedgerStore(ledger interfaces.LedgerStore) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.ledger = ledger
	}
}

// WithDispatcher replaces async.Dispatch, e.g. to run synchronously in tests
func WithDispatcher(dispatch func(ctx context.Context, handler func(ctx context.Context) error)) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.dispatch = dispatch
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(pipeline interfaces.PipelineUseCase, opts ...WebhookOption) *webhookUseCase {
	uc := &webhookUseCase{
		pipeline: pipeline,
		dispatch: async.Dispatch,
		inflight: make(map[string]*model.Run),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent starts a release run for tag events. Other events are logged
// and acknowledged without a run.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) (*model.Run, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"ref", event.Ref,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Info("Ignoring event that does not push a release tag",
			"type", event.Type,
			"ref", event.Ref,
		)
		return nil, nil
	}

	trigger, err := event.Trigger()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build trigger from webhook event",
			goerr.V("delivery_id", event.ID),
			goerr.T(types.ErrTagInvalidEvent),
		)
	}

	run := model.NewRun(trigger)
	accepted := run.Clone()

	key := inflightKey(trigger)
	if existing := uc.claim(key, accepted.Clone()); existing != nil {
		logger.Info("Release run for the tag is already in progress",
			"run_id", existing.ID,
			"delivery_id", event.ID,
			"type", event.Type,
		)
		return existing.Clone(), nil
	}

	if uc.ledger != nil {
		if err := uc.ledger.PutRun(ctx, run.Clone()); err != nil {
			uc.release(key)
			return nil, goerr.Wrap(err, "failed to record queued run",
				goerr.V("run_id", run.ID),
			)
		}
	}

	logger.Info("Accepted release run",
		"run_id", run.ID,
		"ref", trigger.Ref,
		"repository", trigger.Repo.FullName(),
	)

	uc.dispatch(ctx, func(ctx context.Context) error {
		defer uc.release(key)
		return uc.pipeline.Execute(ctx, run)
	})

	return accepted, nil
}

// inflightKey returns the ledger key of the triggering tag, or "" when the
// ref is not a valid tag; such runs fail at the tag step and are not deduplicated.
func inflightKey(trigger model.Trigger) string {
	tag, err := model.TagFromRef(trigger.Ref)
	if err != nil {
		return ""
	}
	return model.LedgerKey(trigger.Repo, tag)
}

// claim registers run for key and returns nil, or returns the run already
// holding the key
func (uc *webhookUseCase) claim(key string, run *model.Run) *model.Run {
	if key == "" {
		return nil
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if existing, ok := uc.inflight[key]; ok {
		return existing
	}
	uc.inflight[key] = run
	return nil
}

func (uc *webhookUseCase) release(key string) {
	if key == "" {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inflight, key)
}
