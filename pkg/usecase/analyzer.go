package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// analyzerService wraps the current AI provider and converts any provider
// failure into a fallback result, so the orchestrator always has
// something to report. The provider can be swapped at runtime;
// last-writer-wins is sufficient since switching is an operational
// action, not a per-request one.
type analyzerService struct {
	mu       sync.RWMutex
	provider interfaces.Provider
}

// NewAnalyzer creates a new analyzer service around the given provider
func NewAnalyzer(provider interfaces.Provider) interfaces.Analyzer {
	return &analyzerService{provider: provider}
}

// Analyze runs the current provider. It never fails: a provider error is
// replaced by an "unavailable" fallback result, distinguishable in its
// summary text from the provider's own malformed-output fallback.
func (s *analyzerService) Analyze(ctx context.Context, req *model.AnalysisRequest) *model.AnalysisResult {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	logger := ctxlog.From(ctx)
	logger.Info("Starting AI analysis", "title", req.Title, "diff_length", len(req.Diff))

	result, err := provider.Analyze(ctx, req)
	if err != nil {
		logger.Error("AI provider call failed, substituting fallback result", "error", err)
		return model.UnavailableResult(err.Error())
	}

	logger.Info("AI analysis completed", "quality_score", result.QualityScore)
	return result
}

// SetProvider swaps the current provider. Visible to subsequently
// scheduled analyses.
func (s *analyzerService) SetProvider(p interfaces.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}
