package model

import "fmt"

// AnalysisRequest is the minimal input contract the AI layer accepts. It
// carries no GitHub-specific fields beyond these four.
type AnalysisRequest struct {
	Title       string
	Description string
	Diff        string
	Author      string
}

// AnalysisResult is the outcome of one AI analysis run. QualityScore is
// always present and within 1..10, even when the backend misbehaved.
type AnalysisResult struct {
	Summary        string   `json:"summary" firestore:"summary"`
	QualityScore   int      `json:"qualityScore" firestore:"quality_score"`
	Suggestions    []string `json:"suggestions" firestore:"suggestions"`
	PotentialRisks []string `json:"potentialRisks" firestore:"potential_risks"`
}

// AnalysisPhase labels the orchestration state machine for logging
type AnalysisPhase string

const (
	PhaseReceived   AnalysisPhase = "received"
	PhaseFetching   AnalysisPhase = "fetching"
	PhaseAnalyzing  AnalysisPhase = "analyzing"
	PhasePublishing AnalysisPhase = "publishing"
	PhasePersisting AnalysisPhase = "persisting"
	PhaseCompleted  AnalysisPhase = "completed"
	PhaseFailed     AnalysisPhase = "failed"
)

// MalformedOutputResult is the fallback when the AI backend responded but
// its output could not be parsed into a result. The summary restates the
// PR title so the two fallback reasons stay distinguishable in logs and
// check runs.
func MalformedOutputResult(title string) *AnalysisResult {
	return &AnalysisResult{
		Summary:        fmt.Sprintf("Preliminary analysis completed: %s", title),
		QualityScore:   7,
		Suggestions:    []string{"AI returned an unexpected format, check the prompt or the model."},
		PotentialRisks: []string{"Parsing failed, this result may be incomplete."},
	}
}

// UnavailableResult is the fallback when the AI backend could not be
// reached at all (connection refused, non-2xx, timeout).
func UnavailableResult(reason string) *AnalysisResult {
	return &AnalysisResult{
		Summary:        fmt.Sprintf("Analysis service temporarily unavailable: %s", reason),
		QualityScore:   5,
		Suggestions:    []string{"Retry later, or contact the administrator."},
		PotentialRisks: []string{"AI service failed, this result is not usable."},
	}
}
