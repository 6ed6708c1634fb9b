package model

import (
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TriggerKind tells how a run was started
type TriggerKind string

const (
	TriggerTagPush TriggerKind = "tag_push"
	TriggerManual  TriggerKind = "manual"
	TriggerWebhook TriggerKind = "webhook"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string `json:"owner" firestore:"owner"`
	Name  string `json:"name" firestore:"name"`
}

// ParseRepository parses "owner/name"
func ParseRepository(fullName string) (Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, goerr.New("repository must be in owner/name form",
			goerr.V("repository", fullName),
			goerr.T(types.ErrTagConfig),
		)
	}
	return Repository{Owner: owner, Name: name}, nil
}

// FullName returns "owner/name"
func (r Repository) FullName() string {
	if r.IsZero() {
		return ""
	}
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the repository is unset
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// Trigger describes the event that started a run
type Trigger struct {
	Kind      TriggerKind `json:"kind" firestore:"kind"`
	Ref       string      `json:"ref,omitempty" firestore:"ref"`
	Repo      Repository  `json:"repository" firestore:"repository"`
	CommitSHA string      `json:"commit_sha,omitempty" firestore:"commit_sha"`
	Actor     string      `json:"actor,omitempty" firestore:"actor"`
	DryRun    bool        `json:"dry_run,omitempty" firestore:"dry_run"`
}

// IsRehearsal reports whether the run was dispatched manually without a tag
func (t Trigger) IsRehearsal() bool {
	return t.Kind == TriggerManual && t.Ref == ""
}

// SourceRef returns the reference used to obtain repository contents
func (t Trigger) SourceRef() string {
	if t.CommitSHA != "" {
		return t.CommitSHA
	}
	return t.Ref
}
