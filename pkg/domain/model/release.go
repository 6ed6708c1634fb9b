package model

// ReleaseRequest describes the hosted release to create for a tag
type ReleaseRequest struct {
	Repo       Repository
	Tag        Tag
	Name       string
	Body       string
	CommitSHA  string
	Draft      bool
	Prerelease bool
}

// Release is a hosted release object
type Release struct {
	ID     int64  `json:"id" firestore:"id"`
	Tag    Tag    `json:"tag" firestore:"tag"`
	Name   string `json:"name" firestore:"name"`
	Body   string `json:"body" firestore:"body"`
	URL    string `json:"url,omitempty" firestore:"url"`
	Reused bool   `json:"reused,omitempty" firestore:"reused"`
	DryRun bool   `json:"dry_run,omitempty" firestore:"dry_run"`
}
