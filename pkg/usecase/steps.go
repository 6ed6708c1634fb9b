package usecase

import (
	"context"
	"crypto/md5" // #nosec G501 legacy upload API still requires an MD5 digest
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const rehearsalNotes = "Rehearsal of the release pipeline. No release notes file was found for the synthetic tag."

func (p *Pipeline) checkout(ctx context.Context, st *runState) (string, error) {
	if err := requireConfigured("source", p.source); err != nil {
		return "", err
	}

	ws, err := p.source.Fetch(ctx, st.run.Trigger)
	if err != nil {
		return "", goerr.Wrap(err, "failed to obtain repository contents", goerr.T(types.ErrTagCheckoutFailed))
	}
	st.workspace = ws

	return "checked out to " + ws.Dir, nil
}

func (p *Pipeline) setup(ctx context.Context, st *runState) (string, error) {
	if len(p.cfg.SetupCommands) > 0 {
		if err := requireConfigured("runner", p.runner); err != nil {
			return "", err
		}
	}

	logger := ctxlog.From(ctx)
	for _, cmd := range p.cfg.SetupCommands {
		logger.Info("Running setup command", "command", cmd)
		if err := p.runner.Run(ctx, st.workspace.Dir, cmd, p.cfg.BuildEnv); err != nil {
			return "", goerr.Wrap(err, "setup command failed",
				goerr.V("command", cmd),
				goerr.T(types.ErrTagSetupFailed),
			)
		}
	}

	for _, tool := range p.cfg.Tools {
		path, err := p.lookPath(tool)
		if err != nil {
			return "", goerr.Wrap(err, "required tool is not installed",
				goerr.V("tool", tool),
				goerr.T(types.ErrTagSetupFailed),
			)
		}
		logger.Debug("Resolved tool", "tool", tool, "path", path)
	}

	return fmt.Sprintf("%d commands, %d tools", len(p.cfg.SetupCommands), len(p.cfg.Tools)), nil
}

func (p *Pipeline) deriveTag(ctx context.Context, st *runState) (string, error) {
	trigger := st.run.Trigger

	if trigger.IsRehearsal() {
		st.tag = model.RehearsalTag
		st.rehearsal = true
		st.dryRun = true
		ctxlog.From(ctx).Warn("No tag given, rehearsing with synthetic tag", "tag", st.tag)
	} else {
		tag, err := model.TagFromRef(trigger.Ref)
		if err != nil {
			return "", err
		}
		st.tag = tag
	}
	st.run.Tag = st.tag

	st.repo = trigger.Repo
	if !p.cfg.Repo.IsZero() {
		st.repo = p.cfg.Repo
	}

	return "tag " + st.tag.String(), nil
}

func (p *Pipeline) build(ctx context.Context, st *runState) (string, error) {
	logger := ctxlog.From(ctx)

	if p.cfg.BuildCommand != "" {
		if err := requireConfigured("runner", p.runner); err != nil {
			return "", err
		}

		env := append([]string{
			"DROVER_TAG=" + st.tag.String(),
			"DROVER_VERSION=" + st.tag.Version(),
		}, p.cfg.BuildEnv...)

		logger.Info("Running build command", "command", p.cfg.BuildCommand)
		if err := p.runner.Run(ctx, st.workspace.Dir, p.cfg.BuildCommand, env); err != nil {
			return "", goerr.Wrap(err, "build command failed",
				goerr.V("command", p.cfg.BuildCommand),
				goerr.T(types.ErrTagBuildFailed),
			)
		}
	}

	artifacts, err := p.collectArtifacts(ctx, st)
	if err != nil {
		return "", err
	}
	st.artifacts = artifacts

	for _, a := range artifacts {
		st.run.Artifacts = append(st.run.Artifacts, a.Name)
	}

	return fmt.Sprintf("%d artifacts for version %s", len(artifacts), st.tag.Version()), nil
}

// collectArtifacts gathers build outputs matching the configured glob. Files
// whose names do not carry the tag's version are left behind as stale.
func (p *Pipeline) collectArtifacts(ctx context.Context, st *runState) ([]*model.Artifact, error) {
	logger := ctxlog.From(ctx)

	pattern := filepath.Join(st.workspace.Dir, p.cfg.ArtifactDir, p.cfg.ArtifactGlob)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid artifact pattern",
			goerr.V("pattern", pattern),
			goerr.T(types.ErrTagConfig),
		)
	}
	sort.Strings(matches)

	version := st.tag.Version()
	var artifacts []*model.Artifact
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to stat artifact",
				goerr.V("path", path),
				goerr.T(types.ErrTagBuildFailed),
			)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		name := filepath.Base(path)
		if !st.rehearsal && !model.MatchesVersion(name, version) {
			logger.Warn("Ignoring artifact that does not match the release version",
				"artifact", name,
				"version", version,
			)
			continue
		}

		artifact, err := digestArtifact(path, info)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to digest artifact",
				goerr.V("path", path),
				goerr.T(types.ErrTagBuildFailed),
			)
		}
		artifacts = append(artifacts, artifact)
	}

	if len(artifacts) == 0 {
		return nil, goerr.New("build produced no artifacts for the release version",
			goerr.V("pattern", pattern),
			goerr.V("version", version),
			goerr.T(types.ErrTagBuildFailed),
		)
	}

	return artifacts, nil
}

func digestArtifact(path string, info fs.FileInfo) (*model.Artifact, error) {
	f, err := os.Open(path) // #nosec G304 path comes from the configured artifact glob
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open artifact")
	}
	defer f.Close()

	sha := sha256.New()
	sum := md5.New() // #nosec G401
	if _, err := io.Copy(io.MultiWriter(sha, sum), f); err != nil {
		return nil, goerr.Wrap(err, "failed to read artifact")
	}

	return &model.Artifact{
		Path:   path,
		Name:   info.Name(),
		Size:   info.Size(),
		SHA256: hex.EncodeToString(sha.Sum(nil)),
		MD5:    hex.EncodeToString(sum.Sum(nil)),
	}, nil
}

func (p *Pipeline) readNotes(ctx context.Context, st *runState) (string, error) {
	rel := st.tag.NotesPath(p.cfg.NotesDir, p.cfg.NotesExt)
	path := filepath.Join(st.workspace.Dir, rel)

	body, err := os.ReadFile(path) // #nosec G304 path is derived from a validated tag
	if err == nil {
		return string(body), nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		if st.rehearsal {
			ctxlog.From(ctx).Warn("Release notes file not found, using placeholder for rehearsal", "path", rel)
			return rehearsalNotes, nil
		}
		return "", goerr.Wrap(err, "release notes file does not exist",
			goerr.V("path", rel),
			goerr.V("tag", st.tag),
			goerr.T(types.ErrTagNotesMissing),
		)
	}

	return "", goerr.Wrap(err, "failed to read release notes file",
		goerr.V("path", rel),
		goerr.T(types.ErrTagReleaseFailed),
	)
}

func (p *Pipeline) createRelease(ctx context.Context, st *runState) (string, error) {
	logger := ctxlog.From(ctx)

	body, err := p.readNotes(ctx, st)
	if err != nil {
		return "", err
	}

	req := &model.ReleaseRequest{
		Repo:       st.repo,
		Tag:        st.tag,
		Name:       st.tag.String(),
		Body:       body,
		CommitSHA:  st.run.Trigger.CommitSHA,
		Draft:      p.cfg.Draft,
		Prerelease: p.cfg.Prerelease,
	}

	if st.dryRun {
		logger.Info("Dry run: would create release",
			"repository", st.repo.FullName(),
			"tag", req.Tag,
			"body_bytes", len(body),
		)
		st.release = &model.Release{Tag: req.Tag, Name: req.Name, Body: body, DryRun: true}
		st.run.Release = st.release
		return "dry run: release " + req.Name, nil
	}

	if st.repo.IsZero() {
		return "", goerr.New("repository is not known for the release",
			goerr.T(types.ErrTagConfig),
		)
	}
	if err := requireConfigured("release host", p.host); err != nil {
		return "", err
	}

	key := model.LedgerKey(st.repo, st.tag)
	st.unlock = p.locks.lock(key)

	record, err := p.loadRecord(ctx, key)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load ledger record", goerr.T(types.ErrTagReleaseFailed))
	}
	if record == nil {
		record = model.NewLedgerRecord(st.repo, st.tag)
	}
	st.record = record

	release, err := p.findRelease(ctx, st)
	if err != nil {
		return "", err
	}

	switch {
	case release == nil:
		release, err = p.host.CreateRelease(ctx, req)
		if err != nil {
			return "", goerr.Wrap(err, "failed to create release",
				goerr.V("tag", st.tag),
				goerr.T(types.ErrTagReleaseFailed),
			)
		}
		logger.Info("Created release", "tag", st.tag, "url", release.URL)

	case release.Body != body:
		id := release.ID
		release, err = p.host.UpdateReleaseBody(ctx, st.repo, id, body)
		if err != nil {
			return "", goerr.Wrap(err, "failed to update release body",
				goerr.V("release_id", id),
				goerr.T(types.ErrTagReleaseFailed),
			)
		}
		release.Reused = true
		logger.Info("Reused existing release and updated its body", "tag", st.tag, "url", release.URL)

	default:
		release.Reused = true
		logger.Info("Reused existing release", "tag", st.tag, "url", release.URL)
	}

	st.release = release
	st.run.Release = release

	record.ReleaseID = release.ID
	record.ReleaseURL = release.URL
	p.saveRecord(ctx, st)

	if release.Reused {
		return "reused release " + release.URL, nil
	}
	return "created release " + release.URL, nil
}

// findRelease looks up the release of an earlier run by its recorded ID
// first, since lookup by tag does not return drafts.
func (p *Pipeline) findRelease(ctx context.Context, st *runState) (*model.Release, error) {
	if id := st.record.ReleaseID; id != 0 {
		release, err := p.host.GetRelease(ctx, st.repo, id)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up recorded release",
				goerr.V("release_id", id),
				goerr.T(types.ErrTagReleaseFailed),
			)
		}
		if release != nil {
			return release, nil
		}
		ctxlog.From(ctx).Warn("Recorded release no longer exists", "release_id", id, "tag", st.tag)
	}

	release, err := p.host.GetReleaseByTag(ctx, st.repo, st.tag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up existing release",
			goerr.V("tag", st.tag),
			goerr.T(types.ErrTagReleaseFailed),
		)
	}
	return release, nil
}

func (p *Pipeline) publish(ctx context.Context, st *runState) (string, error) {
	logger := ctxlog.From(ctx)

	if err := requireConfigured("publisher", p.publisher); err != nil {
		if !st.dryRun {
			return "", err
		}
	}

	var uploaded, existing int
	for _, artifact := range st.artifacts {
		if st.dryRun {
			logger.Info("Dry run: would publish artifact",
				"artifact", artifact.Name,
				"version", st.tag.Version(),
				"size", artifact.Size,
			)
			continue
		}

		if st.record != nil && st.record.HasPublished(artifact.Name) {
			logger.Info("Artifact already published in a previous run", "artifact", artifact.Name)
			st.run.Published = append(st.run.Published, artifact.Name)
			existing++
			continue
		}

		result, err := p.publisher.Publish(ctx, &model.PublishRequest{
			Repo:     st.repo,
			Tag:      st.tag,
			Artifact: artifact,
			Release:  st.release,
		})
		if err != nil {
			return "", goerr.Wrap(err, "failed to publish artifact",
				goerr.V("artifact", artifact.Name),
				goerr.V("index", p.publisher.Name()),
				goerr.T(types.ErrTagPublishFailed),
			)
		}

		if result.AlreadyExists {
			logger.Info("Artifact already exists at the package index", "artifact", artifact.Name)
			existing++
		} else {
			logger.Info("Published artifact", "artifact", artifact.Name, "location", result.Location)
			uploaded++
		}

		st.run.Published = append(st.run.Published, artifact.Name)
		if st.record != nil {
			st.record.MarkPublished(artifact.Name)
			p.saveRecord(ctx, st)
		}
	}

	if st.dryRun {
		return fmt.Sprintf("dry run: %d artifacts", len(st.artifacts)), nil
	}
	return fmt.Sprintf("%d uploaded, %d already present at %s", uploaded, existing, p.publisher.Name()), nil
}

func (p *Pipeline) loadRecord(ctx context.Context, key string) (*model.LedgerRecord, error) {
	if p.ledger == nil {
		return nil, nil
	}
	return p.ledger.GetRecord(ctx, key)
}

func (p *Pipeline) saveRecord(ctx context.Context, st *runState) {
	if p.ledger == nil || st.record == nil {
		return
	}
	st.record.LastRunID = st.run.ID
	st.record.UpdatedAt = time.Now().UTC()
	if err := p.ledger.PutRecord(ctx, st.record); err != nil {
		ctxlog.From(ctx).Warn("Failed to save ledger record", "key", st.record.Key, "error", err)
	}
}
