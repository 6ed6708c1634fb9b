package github

import (
	"context"
	"os"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// AssetPublisher publishes artifacts as assets of the hosted release
type AssetPublisher struct {
	client *Client
}

var _ interfaces.Publisher = (*AssetPublisher)(nil)

// NewAssetPublisher creates a publisher that attaches artifacts to releases
func NewAssetPublisher(client *Client) *AssetPublisher {
	return &AssetPublisher{client: client}
}

// Name implements interfaces.Publisher
func (p *AssetPublisher) Name() string {
	return "github"
}

// Publish uploads the artifact as a release asset unless one of the same name exists
func (p *AssetPublisher) Publish(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
	if req.Release == nil || req.Release.ID == 0 {
		return nil, goerr.New("release asset upload requires a created release",
			goerr.V("tag", req.Tag),
		)
	}

	gh := p.client.githubClient
	owner, repo, id := req.Repo.Owner, req.Repo.Name, req.Release.ID

	opts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := gh.Repositories.ListReleaseAssets(ctx, owner, repo, id, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list release assets", goerr.V("release_id", id))
		}
		for _, asset := range assets {
			if asset.GetName() == req.Artifact.Name {
				return &model.PublishResult{
					Location:      asset.GetBrowserDownloadURL(),
					AlreadyExists: true,
				}, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	f, err := os.Open(req.Artifact.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open artifact", goerr.V("path", req.Artifact.Path))
	}
	defer f.Close()

	asset, _, err := gh.Repositories.UploadReleaseAsset(ctx, owner, repo, id, &github.UploadOptions{
		Name: req.Artifact.Name,
	}, f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload release asset",
			goerr.V("release_id", id),
			goerr.V("artifact", req.Artifact.Name),
		)
	}

	return &model.PublishResult{Location: asset.GetBrowserDownloadURL()}, nil
}
