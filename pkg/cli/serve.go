package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	controller "github.com/m-mizutani/drover/pkg/controller/http"
	"github.com/m-mizutani/drover/pkg/infra/shell"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		webhookCfg  config.Webhook
		pipelineCfg config.Pipeline
		githubCfg   config.GitHub
		publishCfg  config.Publish
		slackCfg    config.Slack
	)

	flags := serverCfg.Flags()
	flags = append(flags, webhookCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, publishCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server that runs the pipeline on GitHub tag events",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

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

			if components.GitHub == nil {
				return goerr.New("serve requires GitHub credentials to create releases")
			}
			if src, _, _ := wiring.Sources().Resolve(file.Source); src.Name == "local" {
				logger.Warn("Source is the local working tree; webhook runs will build it instead of the tagged commit")
			}

			opts := []usecase.PipelineOption{
				usecase.WithSource(components.Source),
				usecase.WithRunner(shell.New(shell.WithOutput(os.Stderr))),
				usecase.WithReleaseHost(components.GitHub),
				usecase.WithPublisher(components.Publisher),
				usecase.WithLedger(components.Ledger),
			}
			if notifier := slackCfg.Notifier(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}
			pipeline := usecase.NewPipeline(pipeCfg, opts...)

			webhookUC := usecase.NewWebhook(pipeline, usecase.WithLedgerStore(components.Ledger))

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(webhookCfg.Secret),
				controller.WithRunReader(components.Ledger, components.LedgerName),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting",
					slog.String("addr", serverCfg.Addr),
					slog.String("config", path),
					slog.String("publisher", components.Publisher.Name()),
					slog.String("ledger", components.LedgerName),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			<-ctx.Done()
			logger.Info("Shutting down...", slog.Any("cause", context.Cause(ctx)))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
