package pypi

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultRepositoryURL is the legacy upload endpoint of the public index
	DefaultRepositoryURL = "https://upload.pypi.org/legacy/"

	// TokenUsername is the user name the index expects with API tokens
	TokenUsername = "__token__"
)

// Publisher uploads distributions through the legacy upload API
type Publisher struct {
	repositoryURL string
	username      string
	token         string
	packageName   string
	httpClient    *http.Client
}

var _ interfaces.Publisher = (*Publisher)(nil)

// Option configures Publisher
type Option func(*Publisher)

// WithRepositoryURL sets the upload endpoint, e.g. the test index
func WithRepositoryURL(u string) Option {
	return func(p *Publisher) {
		p.repositoryURL = u
	}
}

// WithUsername overrides the __token__ user name
func WithUsername(name string) Option {
	return func(p *Publisher) {
		p.username = name
	}
}

// WithPackageName overrides the project name otherwise taken from the file name
func WithPackageName(name string) Option {
	return func(p *Publisher) {
		p.packageName = name
	}
}

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) {
		p.httpClient = c
	}
}

// New creates a publisher authenticated by token
func New(token string, opts ...Option) *Publisher {
	p := &Publisher{
		repositoryURL: DefaultRepositoryURL,
		username:      TokenUsername,
		token:         token,
		httpClient:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements interfaces.Publisher
func (p *Publisher) Name() string {
	return "pypi"
}

// Publish uploads one distribution file. The index refusing a file that
// already exists is reported as AlreadyExists.
func (p *Publisher) Publish(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
	if p.token == "" {
		return nil, goerr.New("publish token is not set")
	}

	dist, err := parseDistribution(req.Artifact.Name, req.Version())
	if err != nil {
		return nil, err
	}
	if p.packageName != "" {
		dist.name = p.packageName
	}

	body, contentType := p.multipartBody(req, dist)
	defer body.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.repositoryURL, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create upload request", goerr.V("url", p.repositoryURL))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.SetBasicAuth(p.username, p.token)

	ctxlog.From(ctx).Debug("Uploading distribution",
		"artifact", req.Artifact.Name,
		"project", dist.name,
		"version", req.Version(),
		"url", p.repositoryURL,
	)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send upload request", goerr.V("url", p.repositoryURL))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &model.PublishResult{Location: dist.name + "==" + req.Version()}, nil

	case isAlreadyExists(resp.StatusCode, resp.Status, string(respBody)):
		return &model.PublishResult{AlreadyExists: true}, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, goerr.New("package index rejected the publish token",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)),
		)

	default:
		return nil, goerr.New("package index rejected the upload",
			goerr.V("status", resp.StatusCode),
			goerr.V("reason", resp.Status),
			goerr.V("body", string(respBody)),
		)
	}
}

// multipartBody streams the form so large distributions are not held in memory
func (p *Publisher) multipartBody(req *model.PublishRequest, dist *distribution) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		fields := [][2]string{
			{":action", "file_upload"},
			{"protocol_version", "1"},
			{"metadata_version", "2.1"},
			{"name", dist.name},
			{"version", req.Version()},
			{"filetype", dist.fileType},
			{"pyversion", dist.pyVersion},
			{"md5_digest", req.Artifact.MD5},
			{"sha256_digest", req.Artifact.SHA256},
		}
		for _, f := range fields {
			if err := mw.WriteField(f[0], f[1]); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		part, err := mw.CreateFormFile("content", req.Artifact.Name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		f, err := os.Open(req.Artifact.Path)
		if err != nil {
			pw.CloseWithError(goerr.Wrap(err, "failed to open artifact", goerr.V("path", req.Artifact.Path)))
			return
		}
		defer f.Close()

		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

func isAlreadyExists(status int, reason, body string) bool {
	if status != http.StatusBadRequest && status != http.StatusConflict {
		return false
	}
	text := strings.ToLower(reason + " " + body)
	return strings.Contains(text, "already exist")
}
