package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func cmdConfig() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the pipeline configuration file",
		Commands: []*cli.Command{
			cmdConfigInit(),
			cmdConfigCheck(),
			cmdConfigShow(),
		},
	}
}

func cmdConfigInit() *cli.Command {
	var format string

	return &cli.Command{
		Name:  "init",
		Usage: "Print a configuration file listing every implementation's defaults",
		Flags: []cli.Flag{formatFlag(&format)},
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := (&config.Wiring{}).DefaultsFile()
			if err != nil {
				return err
			}
			return writeFile(c, f, format)
		},
	}
}

func cmdConfigShow() *cli.Command {
	var (
		pipelineCfg config.Pipeline
		format      string
	)

	return &cli.Command{
		Name:  "show",
		Usage: "Print the configuration as resolved, with defaults merged into the selected blocks",
		Flags: append(pipelineCfg.Flags(), formatFlag(&format)),
		Action: func(ctx context.Context, c *cli.Command) error {
			f, _, err := pipelineCfg.Load()
			if err != nil {
				return err
			}
			resolved, err := (&config.Wiring{}).Resolved(f)
			if err != nil {
				return err
			}
			return writeFile(c, resolved, format)
		},
	}
}

func formatFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Usage:       "Output format (toml or yaml)",
		Value:       "toml",
		Destination: dst,
	}
}

func writeFile(c *cli.Command, f *config.File, format string) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(format) {
	case "toml":
		out, err = toml.Marshal(f)
	case "yaml", "yml":
		out, err = yaml.Marshal(f)
	default:
		return goerr.New("unsupported format", goerr.V("format", format))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to encode configuration")
	}

	_, err = stdout(c).Write(out)
	return err
}

func cmdConfigCheck() *cli.Command {
	var pipelineCfg config.Pipeline

	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configuration file without building anything",
		Flags: pipelineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			f, path, err := pipelineCfg.Load()
			if err != nil {
				return err
			}
			if err := (&config.Wiring{}).Validate(f); err != nil {
				return err
			}

			if path == "" {
				path = "(built-in defaults)"
			} else {
				path = filepath.Clean(path)
			}
			ctxlog.From(ctx).Info("Configuration is valid", "path", path)
			fmt.Fprintf(stdout(c), "%s: ok\n", path)
			return nil
		},
	}
}
