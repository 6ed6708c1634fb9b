package interfaces

//go:generate moq -out mocks/github_mock.go -pkg mocks . ReleaseHost

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// GitHubClient defines the GitHub operations the pipeline depends on
type GitHubClient interface {
	ReleaseHost

	// DownloadZipball downloads the source code zipball for a specific commit
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)
}

// ReleaseHost creates and looks up hosted release objects
type ReleaseHost interface {
	// GetRelease returns the release with the ID, or nil when it no longer
	// exists. Unlike GetReleaseByTag it also finds draft releases.
	GetRelease(ctx context.Context, repo model.Repository, id int64) (*model.Release, error)

	// GetReleaseByTag returns the release for the tag, or nil when none exists
	GetReleaseByTag(ctx context.Context, repo model.Repository, tag model.Tag) (*model.Release, error)

	// CreateRelease creates a release named after the tag
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error)

	// UpdateReleaseBody replaces the description of an existing release
	UpdateReleaseBody(ctx context.Context, repo model.Repository, id int64, body string) (*model.Release, error)
}
