package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Notifier posts run outcomes to an incoming webhook
type Notifier struct {
	webhookURL string
	onlyFailed bool
}

var _ interfaces.Notifier = (*Notifier)(nil)

// Option configures Notifier
type Option func(*Notifier)

// WithOnlyFailures suppresses messages for successful runs
func WithOnlyFailures() Option {
	return func(n *Notifier) {
		n.onlyFailed = true
	}
}

// New creates a notifier for the incoming webhook URL
func New(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{webhookURL: webhookURL}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyRun implements interfaces.Notifier
func (n *Notifier) NotifyRun(ctx context.Context, run *model.Run) error {
	if n.onlyFailed && run.Status != model.RunFailed {
		return nil
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, BuildMessage(run)); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("run_id", run.ID))
	}
	return nil
}

// BuildMessage renders the run as a Slack message
func BuildMessage(run *model.Run) *slack.WebhookMessage {
	tag := run.Tag.String()
	if tag == "" {
		tag = run.Trigger.Ref
	}

	color, verb := "good", "succeeded"
	if run.Status == model.RunFailed {
		color, verb = "danger", "failed"
	}

	subject := run.Trigger.Repo.FullName()
	if subject == "" {
		subject = "release"
	}
	text := fmt.Sprintf("Release of %s %s %s", subject, tag, verb)
	if run.Release != nil && run.Release.DryRun {
		text += " (dry run)"
	}

	fields := []slack.AttachmentField{
		{Title: "Run", Value: run.ID.String(), Short: true},
		{Title: "Trigger", Value: string(run.Trigger.Kind), Short: true},
	}
	if step := run.FailedStep(); step != "" {
		fields = append(fields, slack.AttachmentField{Title: "Failed step", Value: string(step), Short: true})
	}
	if run.Release != nil && run.Release.URL != "" {
		fields = append(fields, slack.AttachmentField{Title: "Release", Value: run.Release.URL})
	}
	if len(run.Published) > 0 {
		fields = append(fields, slack.AttachmentField{Title: "Published", Value: strings.Join(run.Published, "\n")})
	}
	if run.Error != "" {
		fields = append(fields, slack.AttachmentField{Title: "Error", Value: "```" + run.Error + "```"})
	}

	return &slack.WebhookMessage{
		Text: text,
		Attachments: []slack.Attachment{
			{Color: color, Fields: fields},
		},
	}
}
