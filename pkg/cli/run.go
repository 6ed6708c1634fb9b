package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/infra/shell"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// triggerInput is the run trigger as given by flags or the CI environment
type triggerInput struct {
	Ref    string
	Tag    string
	Repo   string
	SHA    string
	Actor  string
	Event  string
	DryRun bool
}

func (in *triggerInput) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Git reference that triggered the run, e.g. refs/tags/v1.2.3",
			Destination: &in.Ref,
			Sources:     cli.EnvVars("DROVER_REF", "GITHUB_REF"),
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Release tag; shorthand for --ref refs/tags/<tag>",
			Destination: &in.Tag,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository in owner/name form",
			Destination: &in.Repo,
			Sources:     cli.EnvVars("DROVER_REPOSITORY", "GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "sha",
			Usage:       "Commit SHA of the reference",
			Destination: &in.SHA,
			Sources:     cli.EnvVars("DROVER_SHA", "GITHUB_SHA"),
		},
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "User that started the run",
			Destination: &in.Actor,
			Sources:     cli.EnvVars("DROVER_ACTOR", "GITHUB_ACTOR"),
		},
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Name of the triggering event; workflow_dispatch starts a manual run",
			Destination: &in.Event,
			Sources:     cli.EnvVars("DROVER_EVENT", "GITHUB_EVENT_NAME"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Run every step without creating a release or publishing",
			Destination: &in.DryRun,
			Sources:     cli.EnvVars("DROVER_DRY_RUN"),
		},
	}
}

// trigger builds the pipeline trigger. A manual dispatch on a branch is a
// rehearsal and carries no ref.
func (in *triggerInput) trigger() (model.Trigger, error) {
	if in.Tag != "" {
		if in.Ref != "" && in.Ref != model.Tag(in.Tag).Ref() {
			return model.Trigger{}, goerr.New("--tag and --ref disagree",
				goerr.V("tag", in.Tag),
				goerr.V("ref", in.Ref),
			)
		}
		in.Ref = model.Tag(in.Tag).Ref()
	}

	trigger := model.Trigger{
		Kind:      model.TriggerTagPush,
		Ref:       in.Ref,
		CommitSHA: in.SHA,
		Actor:     in.Actor,
		DryRun:    in.DryRun,
	}

	isTagRef := strings.HasPrefix(in.Ref, model.TagRefPrefix)
	if in.Ref == "" || (in.Event == "workflow_dispatch" && !isTagRef) {
		trigger.Kind = model.TriggerManual
		trigger.Ref = ""
	}

	if in.Repo != "" {
		repo, err := model.ParseRepository(in.Repo)
		if err != nil {
			return model.Trigger{}, err
		}
		trigger.Repo = repo
	}

	return trigger, nil
}

func cmdRun() *cli.Command {
	var (
		input       triggerInput
		pipelineCfg config.Pipeline
		githubCfg   config.GitHub
		publishCfg  config.Publish
		slackCfg    config.Slack
	)

	flags := input.flags()
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, publishCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the release pipeline once for a tag",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			trigger, err := input.trigger()
			if err != nil {
				return err
			}

			file, path, err := pipelineCfg.Load()
			if err != nil {
				return err
			}
			pipeCfg, err := file.PipelineConfig()
			if err != nil {
				return err
			}

			wiring := &config.Wiring{GitHub: &githubCfg, Publish: &publishCfg}
			components, err := wiring.Build(ctx, file)
			if err != nil {
				return err
			}
			defer components.Close(ctx)

			opts := []usecase.PipelineOption{
				usecase.WithSource(components.Source),
				usecase.WithRunner(shell.New(shell.WithOutput(os.Stderr))),
				usecase.WithPublisher(components.Publisher),
				usecase.WithLedger(components.Ledger),
			}
			if components.GitHub != nil {
				opts = append(opts, usecase.WithReleaseHost(components.GitHub))
			}
			if notifier := slackCfg.Notifier(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			logger.Info("Starting release run",
				slog.String("config", path),
				slog.String("kind", string(trigger.Kind)),
				slog.String("ref", trigger.Ref),
				slog.Bool("dry_run", trigger.DryRun),
			)

			run := model.NewRun(trigger)
			execErr := usecase.NewPipeline(pipeCfg, opts...).Execute(ctx, run)
			printSummary(stdout(c), run)

			if execErr != nil {
				return goerr.Wrap(execErr, "release run failed", goerr.V("run_id", run.ID))
			}
			return nil
		},
	}
}

// stdout returns the writer for command output, not logs
func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printSummary(w io.Writer, run *model.Run) {
	status := color.New(color.FgGreen, color.Bold)
	if run.Status != model.RunSucceeded {
		status = color.New(color.FgRed, color.Bold)
	}

	tag := run.Tag.String()
	if tag == "" {
		tag = "(no tag)"
	}
	status.Fprintf(w, "%s %s\n", strings.ToUpper(string(run.Status)), tag)

	for _, step := range run.Steps {
		mark := color.New(color.Faint).Sprint("-")
		switch step.Status {
		case model.StepSucceeded:
			mark = color.GreenString("✓")
		case model.StepFailed:
			mark = color.RedString("✗")
		}
		line := fmt.Sprintf("  %s %-8s %s", mark, step.Name, step.Status)
		if step.Message != "" {
			line += ": " + step.Message
		}
		fmt.Fprintln(w, line)
	}

	if run.Release != nil && run.Release.URL != "" {
		fmt.Fprintf(w, "release: %s\n", run.Release.URL)
	}
	for _, name := range run.Published {
		fmt.Fprintf(w, "published: %s\n", name)
	}
}
