package github

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// EventProcessor turns GitHub webhook deliveries into release runs
type EventProcessor struct {
	webhookUC interfaces.WebhookUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(webhookUC interfaces.WebhookUseCase) *EventProcessor {
	return &EventProcessor{
		webhookUC: webhookUC,
	}
}

// ProcessEvent parses a delivery and hands it to the use case. It returns the
// started run, or nil when the event does not push a release tag.
func (p *EventProcessor) ProcessEvent(ctx context.Context, deliveryID, eventType string, body []byte) (*model.Run, error) {
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid webhook payload",
			goerr.V("event_type", eventType),
			goerr.V("delivery_id", deliveryID),
			goerr.T(types.ErrTagInvalidEvent),
		)
	}

	event := ToWebhookEvent(payload)
	event.ID = deliveryID
	event.ReceivedAt = time.Now()
	event.RawPayload = body

	ctxlog.From(ctx).Debug("Parsed webhook event",
		"delivery_id", deliveryID,
		"event_type", eventType,
		"ref", event.Ref,
	)

	return p.webhookUC.ProcessEvent(ctx, event)
}

// ToWebhookEvent extracts what a release run needs from a parsed payload
func ToWebhookEvent(payload any) *model.WebhookEvent {
	// Use Get*() helper methods for concise and nil-safe field access
	switch e := payload.(type) {
	case *github.PushEvent:
		return &model.WebhookEvent{
			Type:       model.EventTypePush,
			Ref:        e.GetRef(),
			Repository: e.GetRepo().GetFullName(),
			CommitSHA:  e.GetAfter(),
			Sender:     e.GetSender().GetLogin(),
			Deleted:    e.GetDeleted(),
		}

	case *github.CreateEvent:
		event := &model.WebhookEvent{
			Type:       model.EventTypeCreate,
			Repository: e.GetRepo().GetFullName(),
			Sender:     e.GetSender().GetLogin(),
		}
		// create events carry the short name; only tags start a run
		if e.GetRefType() == "tag" {
			event.Ref = model.TagRefPrefix + e.GetRef()
		}
		return event

	case *github.PingEvent:
		return &model.WebhookEvent{
			Type:       model.EventTypePing,
			Repository: e.GetRepo().GetFullName(),
			Sender:     e.GetSender().GetLogin(),
		}

	default:
		return &model.WebhookEvent{Type: model.EventTypeUnknown}
	}
}
