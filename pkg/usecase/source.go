package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type localSource struct {
	dir string
}

// NewLocalSource uses a working tree that is already checked out, as in CI
func NewLocalSource(dir string) interfaces.SourceFetcher {
	return &localSource{dir: dir}
}

func (s *localSource) Fetch(ctx context.Context, trigger model.Trigger) (*model.Workspace, error) {
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve checkout directory",
			goerr.V("dir", s.dir),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "checkout directory is not accessible",
			goerr.V("dir", dir),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}
	if !info.IsDir() {
		return nil, goerr.New("checkout path is not a directory",
			goerr.V("dir", dir),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}

	ctxlog.From(ctx).Info("Using local checkout", "dir", dir, "ref", trigger.SourceRef())
	return &model.Workspace{Dir: dir}, nil
}

type githubSource struct {
	githubClient interfaces.GitHubClient
}

// NewGitHubSource downloads the zipball of the triggering commit and extracts it
func NewGitHubSource(githubClient interfaces.GitHubClient) interfaces.SourceFetcher {
	return &githubSource{
		githubClient: githubClient,
	}
}

// Fetch downloads the source code of the triggering commit
func (s *githubSource) Fetch(ctx context.Context, trigger model.Trigger) (*model.Workspace, error) {
	logger := ctxlog.From(ctx)

	repo := trigger.Repo
	ref := trigger.SourceRef()
	if repo.IsZero() || ref == "" {
		return nil, goerr.New("repository and reference are required to download sources",
			goerr.V("repository", repo.FullName()),
			goerr.V("ref", ref),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}

	zipData, err := s.githubClient.DownloadZipball(ctx, repo.Owner, repo.Name, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball",
			goerr.V("repository", repo.FullName()),
			goerr.V("ref", ref),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}

	logger.Info("Downloaded zipball",
		"size_bytes", len(zipData),
		"repository", repo.FullName(),
		"ref", ref,
	)

	ws, err := extractZip(ctx, zipData)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract zip",
			goerr.V("repository", repo.FullName()),
			goerr.T(types.ErrTagCheckoutFailed),
		)
	}

	logger.Info("Extracted zipball to temporary directory",
		"temp_dir", ws.Root,
		"repo_dir", ws.Dir,
		"file_count", len(ws.Files),
		"total_size_bytes", ws.Size,
	)

	return ws, nil
}

// extractZip extracts ZIP data to a temporary directory. GitHub zipballs wrap
// the tree in a single top-level directory, which becomes the workspace root.
func extractZip(ctx context.Context, zipData []byte) (*model.Workspace, error) {
	logger := ctxlog.From(ctx)

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create zip reader")
	}

	tempDir, err := os.MkdirTemp("", "drover-checkout-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}

	if err := os.Chmod(tempDir, 0700); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to set directory permissions", goerr.V("dir", tempDir))
	}

	logger.Debug("Created temporary directory", "temp_dir", tempDir)

	ws := &model.Workspace{
		Root:      tempDir,
		Dir:       tempDir,
		Temporary: true,
	}

	topLevel := map[string]struct{}{}
	for _, file := range zipReader.File {
		if err := extractFile(file, tempDir); err != nil {
			_ = os.RemoveAll(tempDir)
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("file", file.Name))
		}

		top, _, _ := strings.Cut(file.Name, "/")
		topLevel[top] = struct{}{}

		ws.Files = append(ws.Files, file.Name)
		ws.Size += int64(file.UncompressedSize64)
	}

	if len(topLevel) == 1 {
		for top := range topLevel {
			candidate := filepath.Join(tempDir, top)
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				ws.Dir = candidate
			}
		}
	}

	return ws, nil
}

// extractFile extracts a single file from ZIP to the destination directory
func extractFile(file *zip.File, destDir string) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path detected", goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open file in zip", goerr.V("file", file.Name))
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("dir", filepath.Dir(destPath)))
	}

	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}

	return nil
}
