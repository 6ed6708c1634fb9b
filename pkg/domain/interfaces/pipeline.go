package interfaces

//go:generate moq -out mocks/pipeline_mock.go -pkg mocks . SourceFetcher CommandRunner Publisher Notifier

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// SourceFetcher obtains the repository contents at the triggering commit
type SourceFetcher interface {
	Fetch(ctx context.Context, trigger model.Trigger) (*model.Workspace, error)
}

// CommandRunner executes setup and build commands inside a checkout
type CommandRunner interface {
	Run(ctx context.Context, dir, command string, env []string) error
}

// Publisher uploads a build artifact to a package index
type Publisher interface {
	// Name identifies the package index in logs and run records
	Name() string

	// Publish uploads the artifact. An artifact already present at the index
	// is reported with AlreadyExists instead of an error.
	Publish(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error)
}

// Notifier announces run outcomes to operators
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.Run) error
}
