package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration. The service authenticates either as a
// GitHub App (AppID + PrivateKeyFile) or with a personal access token.
type GitHub struct {
	WebhookSecret  string `masq:"secret"`
	Token          string `masq:"secret"`
	AppID          int64
	PrivateKeyFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("ASSAYER_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (alternative to App credentials)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("ASSAYER_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("ASSAYER_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key-file",
			Usage:       "Path to GitHub App private key PEM file",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("ASSAYER_GITHUB_APP_PRIVATE_KEY_FILE"),
		},
	}
}

// PrivateKey reads the App private key from PrivateKeyFile
func (c *GitHub) PrivateKey() ([]byte, error) {
	key, err := os.ReadFile(c.PrivateKeyFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.V("path", c.PrivateKeyFile))
	}
	return key, nil
}

// UsesApp returns true when GitHub App credentials are configured
func (c *GitHub) UsesApp() bool {
	return c.AppID != 0 && c.PrivateKeyFile != ""
}
