package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	"github.com/m-mizutani/assayer/pkg/domain/model"
)

type analysisUseCase struct {
	githubClient interfaces.GitHubClient
	analyzer     interfaces.Analyzer
	repo         interfaces.Repository
	notifier     interfaces.Notifier
}

// AnalysisOption is a functional option for the analysis use case
type AnalysisOption func(*analysisUseCase)

// WithNotifier enables best-effort completion notifications
func WithNotifier(n interfaces.Notifier) AnalysisOption {
	return func(uc *analysisUseCase) {
		uc.notifier = n
	}
}

// NewAnalysis creates a new instance of AnalysisUseCase
func NewAnalysis(githubClient interfaces.GitHubClient, analyzer interfaces.Analyzer, repo interfaces.Repository, opts ...AnalysisOption) interfaces.AnalysisUseCase {
	uc := &analysisUseCase{
		githubClient: githubClient,
		analyzer:     analyzer,
		repo:         repo,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AnalyzePullRequest runs the full analysis flow for one delivery.
// Fetching is fatal: without PR detail there is nothing to analyze.
// Analysis itself cannot fail (the analyzer degrades to a fallback).
// Publishing and persisting are each best-effort once the analysis
// succeeded; a failure of one never blocks the other.
func (uc *analysisUseCase) AnalyzePullRequest(ctx context.Context, ref *model.PullRequestRef) error {
	logger := ctxlog.From(ctx).With(
		"repository", ref.FullName(),
		"number", ref.Number,
	)

	logger.Info("Fetching pull request detail",
		"phase", model.PhaseFetching,
		"head_sha", ref.HeadSHA,
	)
	detail, err := uc.githubClient.GetPullRequestDetail(ctx, ref)
	if err != nil {
		logger.Error("Failed to fetch pull request detail",
			"phase", model.PhaseFailed,
			"error", err,
		)
		return goerr.Wrap(err, "failed to fetch pull request detail",
			goerr.V("repository", ref.FullName()),
			goerr.V("number", ref.Number),
		)
	}

	logger.Info("Analyzing pull request",
		"phase", model.PhaseAnalyzing,
		"title", detail.Title,
		"files_changed", detail.FilesChanged,
	)
	result := uc.analyzer.Analyze(ctx, &model.AnalysisRequest{
		Title:       detail.Title,
		Description: detail.Body,
		Diff:        detail.Diff,
		Author:      detail.Author,
	})

	logger.Info("Publishing check run",
		"phase", model.PhasePublishing,
		"quality_score", result.QualityScore,
	)
	if err := uc.githubClient.CreateCheckRun(ctx, ref, result); err != nil {
		logger.Error("Failed to publish check run", "error", err)
	}

	logger.Info("Persisting analysis record", "phase", model.PhasePersisting)
	record := &model.PullRequestRecord{
		Number:       ref.Number,
		Repository:   ref.FullName(),
		Title:        detail.Title,
		Author:       detail.Author,
		Status:       model.RecordStatusAnalyzed,
		Additions:    detail.Additions,
		Deletions:    detail.Deletions,
		FilesChanged: detail.FilesChanged,
		CreatedAt:    time.Now(),
	}
	if id, err := uc.repo.InsertPullRequest(ctx, record); err != nil {
		logger.Error("Failed to persist analysis record", "error", err)
	} else {
		logger.Info("Persisted analysis record", "record_id", id)
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyAnalysis(ctx, ref, result); err != nil {
			logger.Warn("Failed to send completion notification", "error", err)
		}
	}

	logger.Info("Pull request analysis completed", "phase", model.PhaseCompleted)
	return nil
}
