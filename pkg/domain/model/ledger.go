package model

import (
	"slices"
	"time"
)

// LedgerKey identifies a release in the ledger: owner/name@tag
func LedgerKey(repo Repository, tag Tag) string {
	return repo.FullName() + "@" + tag.String()
}

// LedgerRecord tracks the externally visible progress of a release so that
// re-running the pipeline for the same tag converges instead of duplicating work
type LedgerRecord struct {
	Key        string     `json:"key" firestore:"key"`
	Repo       Repository `json:"repository" firestore:"repository"`
	Tag        Tag        `json:"tag" firestore:"tag"`
	ReleaseID  int64      `json:"release_id,omitempty" firestore:"release_id"`
	ReleaseURL string     `json:"release_url,omitempty" firestore:"release_url"`
	Published  []string   `json:"published,omitempty" firestore:"published"`
	LastRunID  RunID      `json:"last_run_id,omitempty" firestore:"last_run_id"`
	UpdatedAt  time.Time  `json:"updated_at" firestore:"updated_at"`
}

// NewLedgerRecord creates an empty record for the release
func NewLedgerRecord(repo Repository, tag Tag) *LedgerRecord {
	return &LedgerRecord{
		Key:  LedgerKey(repo, tag),
		Repo: repo,
		Tag:  tag,
	}
}

// HasPublished reports whether the artifact was already uploaded
func (r *LedgerRecord) HasPublished(name string) bool {
	return slices.Contains(r.Published, name)
}

// MarkPublished records an uploaded artifact
func (r *LedgerRecord) MarkPublished(name string) {
	if !r.HasPublished(name) {
		r.Published = append(r.Published, name)
	}
}

// Clone returns a deep copy
func (r *LedgerRecord) Clone() *LedgerRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Published = slices.Clone(r.Published)
	return &c
}
