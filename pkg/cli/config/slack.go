package config

import "github.com/urfave/cli/v3"

// Slack holds Slack notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL (empty disables notifications)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("ASSAYER_SLACK_WEBHOOK_URL"),
		},
	}
}

// Enabled returns true when Slack notifications are configured
func (c *Slack) Enabled() bool {
	return c.WebhookURL != ""
}
