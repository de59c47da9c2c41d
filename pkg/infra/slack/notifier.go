package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// Notifier posts analysis summaries to a Slack incoming webhook
type Notifier struct {
	webhookURL string
}

// New creates a new Slack notifier
func New(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// NotifyAnalysis posts a short message about one completed analysis
func (n *Notifier) NotifyAnalysis(ctx context.Context, ref *model.PullRequestRef, result *model.AnalysisResult) error {
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("Analyzed %s#%d — score %d/10\n%s",
			ref.FullName(), ref.Number, result.QualityScore, result.Summary),
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification",
			goerr.V("repository", ref.FullName()),
			goerr.V("number", ref.Number),
		)
	}
	return nil
}
