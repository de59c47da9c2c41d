package interfaces

import (
	"context"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// Provider is one concrete AI backend. Any type exposing Analyze
// qualifies; providers may fail and the analyzer service above them
// converts failures into fallback results.
type Provider interface {
	Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error)
}

// Analyzer is the orchestration-facing analysis service. Analyze never
// fails: every error path degrades to a structurally valid fallback
// result. The current provider can be swapped at runtime.
type Analyzer interface {
	Analyze(ctx context.Context, req *model.AnalysisRequest) *model.AnalysisResult
	SetProvider(p Provider)
}
