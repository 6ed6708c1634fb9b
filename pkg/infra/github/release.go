package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// GetRelease returns the release with the ID, or nil when none exists
func (c *Client) GetRelease(ctx context.Context, repo model.Repository, id int64) (*model.Release, error) {
	rel, _, err := c.githubClient.Repositories.GetRelease(ctx, repo.Owner, repo.Name, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get release",
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", id),
		)
	}
	return toRelease(rel), nil
}

// GetReleaseByTag returns the release for the tag, or nil when none exists
func (c *Client) GetReleaseByTag(ctx context.Context, repo model.Repository, tag model.Tag) (*model.Release, error) {
	rel, _, err := c.githubClient.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag.String())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get release by tag",
			goerr.V("repository", repo.FullName()),
			goerr.V("tag", tag),
		)
	}
	return toRelease(rel), nil
}

// CreateRelease creates a release named after the tag
func (c *Client) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	input := &github.RepositoryRelease{
		TagName:    github.Ptr(req.Tag.String()),
		Name:       github.Ptr(req.Name),
		Body:       github.Ptr(req.Body),
		Draft:      github.Ptr(req.Draft),
		Prerelease: github.Ptr(req.Prerelease),
	}
	if req.CommitSHA != "" {
		input.TargetCommitish = github.Ptr(req.CommitSHA)
	}

	rel, _, err := c.githubClient.Repositories.CreateRelease(ctx, req.Repo.Owner, req.Repo.Name, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("repository", req.Repo.FullName()),
			goerr.V("tag", req.Tag),
		)
	}
	return toRelease(rel), nil
}

// UpdateReleaseBody replaces the description of an existing release
func (c *Client) UpdateReleaseBody(ctx context.Context, repo model.Repository, id int64, body string) (*model.Release, error) {
	rel, _, err := c.githubClient.Repositories.EditRelease(ctx, repo.Owner, repo.Name, id, &github.RepositoryRelease{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update release body",
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", id),
		)
	}
	return toRelease(rel), nil
}

func toRelease(rel *github.RepositoryRelease) *model.Release {
	return &model.Release{
		ID:   rel.GetID(),
		Tag:  model.Tag(rel.GetTagName()),
		Name: rel.GetName(),
		Body: rel.GetBody(),
		URL:  rel.GetHTMLURL(),
	}
}
