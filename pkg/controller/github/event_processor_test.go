package github_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/drover/pkg/controller/github"
	"github.com/m-mizutani/drover/pkg/domain/interfaces/mocks"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

func TestToWebhookEvent(t *testing.T) {
	t.Run("push of a tag", func(t *testing.T) {
		event := githubcontroller.ToWebhookEvent(&github.PushEvent{
			Ref:   github.Ptr("refs/tags/v1.2.3"),
			After: github.Ptr("abc123"),
			Repo: &github.PushEventRepository{
				FullName: github.Ptr("octo/widget"),
			},
			Sender: &github.User{Login: github.Ptr("testuser")},
		})

		gt.Value(t, event.Type).Equal(model.EventTypePush)
		gt.Value(t, event.Ref).Equal("refs/tags/v1.2.3")
		gt.Value(t, event.CommitSHA).Equal("abc123")
		gt.Value(t, event.Repository).Equal("octo/widget")
		gt.Value(t, event.Sender).Equal("testuser")
		gt.True(t, event.IsSupportedEvent())
	})

	t.Run("create of a tag gets a full ref", func(t *testing.T) {
		event := githubcontroller.ToWebhookEvent(&github.CreateEvent{
			Ref:     github.Ptr("v1.2.3"),
			RefType: github.Ptr("tag"),
			Repo:    &github.Repository{FullName: github.Ptr("octo/widget")},
		})
		gt.Value(t, event.Ref).Equal("refs/tags/v1.2.3")
		gt.True(t, event.IsSupportedEvent())
	})

	t.Run("create of a branch is not supported", func(t *testing.T) {
		event := githubcontroller.ToWebhookEvent(&github.CreateEvent{
			Ref:     github.Ptr("v1.2.3"),
			RefType: github.Ptr("branch"),
			Repo:    &github.Repository{FullName: github.Ptr("octo/widget")},
		})
		gt.False(t, event.IsSupportedEvent())
	})

	t.Run("nil fields are tolerated", func(t *testing.T) {
		event := githubcontroller.ToWebhookEvent(&github.PushEvent{})
		gt.Value(t, event.Repository).Equal("")
		gt.False(t, event.IsSupportedEvent())
	})

	t.Run("other payloads are unknown", func(t *testing.T) {
		event := githubcontroller.ToWebhookEvent(&github.ReleaseEvent{})
		gt.Value(t, event.Type).Equal(model.EventTypeUnknown)
	})
}

func TestEventProcessor_ProcessEvent(t *testing.T) {
	ctx := context.Background()

	var received []*model.WebhookEvent
	uc := &mocks.WebhookUseCaseMock{
		ProcessEventFunc: func(ctx context.Context, event *model.WebhookEvent) (*model.Run, error) {
			received = append(received, event)
			if !event.IsSupportedEvent() {
				return nil, nil
			}
			trigger, err := event.Trigger()
			if err != nil {
				return nil, err
			}
			return model.NewRun(trigger), nil
		},
	}
	processor := githubcontroller.NewEventProcessor(uc)

	body, err := json.Marshal(map[string]any{
		"ref":        "refs/tags/v1.2.3",
		"after":      "abc123",
		"deleted":    false,
		"repository": map[string]any{"full_name": "octo/widget"},
		"sender":     map[string]any{"login": "testuser"},
	})
	gt.NoError(t, err)

	run, err := processor.ProcessEvent(ctx, "delivery-1", "push", body)
	gt.NoError(t, err)
	gt.Value(t, run).NotNil()
	gt.Value(t, run.Trigger.CommitSHA).Equal("abc123")

	gt.Value(t, len(received)).Equal(1)
	gt.Value(t, received[0].ID).Equal("delivery-1")
	gt.Value(t, received[0].RawPayload).Equal(body)

	t.Run("invalid payload", func(t *testing.T) {
		_, err := processor.ProcessEvent(ctx, "delivery-2", "push", []byte("{"))
		gt.Error(t, err)
	})
}
