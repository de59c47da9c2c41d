package interfaces

import (
	"context"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// AnalysisUseCase drives the full analysis flow for one pull request
type AnalysisUseCase interface {
	// AnalyzePullRequest fetches PR detail, runs the AI analysis, then
	// publishes and persists the result
	AnalyzePullRequest(ctx context.Context, ref *model.PullRequestRef) error
}

// InstallationUseCase handles App installation events
type InstallationUseCase interface {
	// RegisterInstallation records a new App installation
	RegisterInstallation(ctx context.Context, inst *model.Installation) error
}

// EventProcessor classifies a webhook event and routes it to the
// matching use case. Called from the detached background task, never
// from the HTTP request path.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}
