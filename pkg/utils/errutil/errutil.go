package errutil

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error and reports it to Sentry when a client is configured.
// The Sentry hub is taken from ctx if one was attached, otherwise the current hub.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	attrs := []any{"error", err}
	var gErr *goerr.Error
	if errors.As(err, &gErr) {
		for k, v := range gErr.Values() {
			attrs = append(attrs, k, v)
		}
	}
	ctxlog.From(ctx).Error(msg, attrs...)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if gErr != nil {
			values := sentry.Context{}
			for k, v := range gErr.Values() {
				values[k] = v
			}
			scope.SetContext("values", values)
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered Sentry events to be sent
func Flush() {
	sentry.Flush(2 * time.Second)
}
