package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Publisher stores artifacts in a Cloud Storage bucket laid out as
// <prefix>/<owner>/<repo>/<version>/<file>
type Publisher struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.Publisher = (*Publisher)(nil)

// New creates a publisher. credentialsFile may be empty to use application
// default credentials.
func New(ctx context.Context, bucket, prefix, credentialsFile string) (*Publisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	return NewWithClient(client, bucket, prefix), nil
}

// NewWithClient creates a publisher on an existing client
func NewWithClient(client *storage.Client, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Name implements interfaces.Publisher
func (p *Publisher) Name() string {
	return "gcs"
}

// ObjectName returns where the artifact of the request is stored
func (p *Publisher) ObjectName(req *model.PublishRequest) string {
	return path.Join(p.prefix, req.Repo.Owner, req.Repo.Name, req.Version(), req.Artifact.Name)
}

// Publish uploads the artifact. Objects are never overwritten.
func (p *Publisher) Publish(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
	name := p.ObjectName(req)
	location := "gs://" + p.bucket + "/" + name
	obj := p.client.Bucket(p.bucket).Object(name)

	if _, err := obj.Attrs(ctx); err == nil {
		return &model.PublishResult{Location: location, AlreadyExists: true}, nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, goerr.Wrap(err, "failed to check object", goerr.V("object", location))
	}

	f, err := os.Open(req.Artifact.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open artifact", goerr.V("path", req.Artifact.Path))
	}
	defer f.Close()

	w := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = map[string]string{
		"tag":    req.Tag.String(),
		"sha256": req.Artifact.SHA256,
	}

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write object", goerr.V("object", location))
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			ctxlog.From(ctx).Info("Object was created concurrently", "object", location)
			return &model.PublishResult{Location: location, AlreadyExists: true}, nil
		}
		return nil, goerr.Wrap(err, "failed to finalize object", goerr.V("object", location))
	}

	return &model.PublishResult{Location: location}, nil
}

// Close releases the client
func (p *Publisher) Close() error {
	return p.client.Close()
}
