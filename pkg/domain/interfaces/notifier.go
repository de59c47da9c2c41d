package interfaces

import (
	"context"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// Notifier delivers best-effort notifications about completed analyses
type Notifier interface {
	NotifyAnalysis(ctx context.Context, ref *model.PullRequestRef, result *model.AnalysisResult) error
}
