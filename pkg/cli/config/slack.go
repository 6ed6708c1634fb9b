package config

import (
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds notification configuration
type Slack struct {
	WebhookURL   string `masq:"secret"`
	OnlyFailures bool
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("DROVER_SLACK_WEBHOOK_URL"),
		},
		&cli.BoolFlag{
			Name:        "slack-only-failures",
			Usage:       "Notify only failed runs",
			Destination: &c.OnlyFailures,
			Sources:     cli.EnvVars("DROVER_SLACK_ONLY_FAILURES"),
		},
	}
}

// Notifier returns the Slack notifier, or nil when no webhook URL is set
func (c *Slack) Notifier() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	var opts []slack.Option
	if c.OnlyFailures {
		opts = append(opts, slack.WithOnlyFailures())
	}
	return slack.New(c.WebhookURL, opts...)
}
