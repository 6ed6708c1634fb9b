package config

import "github.com/urfave/cli/v3"

// Publish holds the credential for the package index
type Publish struct {
	Token string `masq:"secret"`
}

// Flags returns CLI flags for publish configuration
func (c *Publish) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "publish-token",
			Usage:       "API token for the package index",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DROVER_PUBLISH_TOKEN"),
		},
	}
}
