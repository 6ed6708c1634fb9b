package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	slacknotifier "github.com/m-mizutani/drover/pkg/infra/slack"
	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"
)

func failedRun() *model.Run {
	run := model.NewRun(model.Trigger{
		Kind: model.TriggerTagPush,
		Ref:  "refs/tags/v1.2.3",
		Repo: model.Repository{Owner: "octo", Name: "widget"},
	})
	run.Tag = "v1.2.3"
	run.Status = model.RunFailed
	run.Step(model.StepRelease).Status = model.StepFailed
	run.Error = "release notes file does not exist"
	return run
}

func TestBuildMessage(t *testing.T) {
	msg := slacknotifier.BuildMessage(failedRun())
	gt.Value(t, msg.Text).Equal("Release of octo/widget v1.2.3 failed")
	gt.Value(t, msg.Attachments[0].Color).Equal("danger")

	var titles []string
	for _, f := range msg.Attachments[0].Fields {
		titles = append(titles, f.Title)
	}
	gt.True(t, strings.Contains(strings.Join(titles, ","), "Failed step"))
}

func TestNotifier(t *testing.T) {
	var received []slack.WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg slack.WebhookMessage
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		received = append(received, msg)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	t.Run("posts run outcome", func(t *testing.T) {
		n := slacknotifier.New(server.URL)
		gt.NoError(t, n.NotifyRun(context.Background(), failedRun()))
		gt.Value(t, len(received)).Equal(1)
		gt.Value(t, received[0].Text).Equal("Release of octo/widget v1.2.3 failed")
	})

	t.Run("failures only", func(t *testing.T) {
		n := slacknotifier.New(server.URL, slacknotifier.WithOnlyFailures())
		run := failedRun()
		run.Status = model.RunSucceeded
		gt.NoError(t, n.NotifyRun(context.Background(), run))
		gt.Value(t, len(received)).Equal(1)
	})

	t.Run("error from webhook", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", http.StatusBadRequest)
		}))
		defer bad.Close()

		err := slacknotifier.New(bad.URL).NotifyRun(context.Background(), failedRun())
		gt.Error(t, err)
		gt.False(t, errors.Is(err, context.Canceled))
	})
}
