package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush    WebhookEventType = "push"
	EventTypeCreate  WebhookEventType = "create"
	EventTypePing    WebhookEventType = "ping"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Ref        string           // Full reference, e.g. refs/tags/v1.2.3
	Repository string           // Repository full name
	CommitSHA  string           // Commit the reference points to
	Sender     string           // Sender username
	Deleted    bool             // Reference was deleted rather than created
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event should start a release run
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePush, EventTypeCreate:
		if e.Deleted || !strings.HasPrefix(e.Ref, TagRefPrefix) {
			return false
		}
		_, err := TagFromRef(e.Ref)
		return err == nil
	default:
		return false
	}
}

// Trigger converts a supported event into a run trigger
func (e *WebhookEvent) Trigger() (Trigger, error) {
	repo, err := ParseRepository(e.Repository)
	if err != nil {
		return Trigger{}, err
	}

	return Trigger{
		Kind:      TriggerWebhook,
		Ref:       e.Ref,
		Repo:      repo,
		CommitSHA: e.CommitSHA,
		Actor:     e.Sender,
	}, nil
}
