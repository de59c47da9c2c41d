package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/user.md
var userPromptTemplate string

// Provider runs PR analysis through a gollem LLM client (Gemini via
// Vertex AI). JSON output mode is requested per session; output that
// still fails to parse degrades to the same fallback as the Ollama
// provider.
type Provider struct {
	llmClient gollem.LLMClient
	userTmpl  *template.Template
}

// New creates a new Gemini-backed provider
func New(llmClient gollem.LLMClient) (*Provider, error) {
	tmpl, err := template.New("user").Parse(userPromptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse user prompt template")
	}

	return &Provider{
		llmClient: llmClient,
		userTmpl:  tmpl,
	}, nil
}

// Analyze generates an analysis for one pull request
func (p *Provider) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error) {
	desc := req.Description
	if desc == "" {
		desc = "(none)"
	}

	var buf bytes.Buffer
	if err := p.userTmpl.Execute(&buf, map[string]string{
		"Title":       req.Title,
		"Description": desc,
		"Author":      req.Author,
		"Diff":        req.Diff,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render user prompt")
	}

	session, err := p.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate LLM content")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("no response from LLM")
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resp.Texts[0]), &result); err != nil {
		ctxlog.From(ctx).Warn("failed to parse LLM response",
			"error", err,
			"response_length", len(resp.Texts[0]),
		)
		return model.MalformedOutputResult(req.Title), nil
	}
	if result.QualityScore < 1 || result.QualityScore > 10 {
		return model.MalformedOutputResult(req.Title), nil
	}

	return &result, nil
}
