package interfaces

import (
	"context"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// GitHubClient defines the outbound GitHub API operations the pipeline
// needs. Implementations handle authentication, rate limits and retries.
type GitHubClient interface {
	// GetPullRequestDetail fetches metadata, file list and diff for a PR
	GetPullRequestDetail(ctx context.Context, ref *model.PullRequestRef) (*model.PullRequestDetail, error)

	// CreateCheckRun publishes an analysis result as a check run attached
	// to the head commit of the PR
	CreateCheckRun(ctx context.Context, ref *model.PullRequestRef, result *model.AnalysisResult) error
}
