package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify pipeline failures for operators and notifications.
var (
	ErrTagInvalidTag     = goerr.NewTag("invalid_tag")
	ErrTagConfig         = goerr.NewTag("config")
	ErrTagCheckoutFailed = goerr.NewTag("checkout_failed")
	ErrTagSetupFailed    = goerr.NewTag("setup_failed")
	ErrTagBuildFailed    = goerr.NewTag("build_failed")
	ErrTagNotesMissing   = goerr.NewTag("notes_missing")
	ErrTagReleaseFailed  = goerr.NewTag("release_failed")
	ErrTagPublishFailed  = goerr.NewTag("publish_failed")
	ErrTagNotFound       = goerr.NewTag("not_found")
	ErrTagInvalidEvent   = goerr.NewTag("invalid_event")
)
