package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . WebhookUseCase PipelineUseCase

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent starts a run for a supported event and returns it.
	// Unsupported events return a nil run and no error.
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) (*model.Run, error)
}

// PipelineUseCase runs the release pipeline
type PipelineUseCase interface {
	// Execute runs every step of the pipeline for the run, in order, stopping
	// at the first failure. The run record is updated in place.
	Execute(ctx context.Context, run *model.Run) error
}
