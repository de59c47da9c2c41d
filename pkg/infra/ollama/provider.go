package ollama

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/jsonex"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

//go:embed prompts/pr_analysis.md
var promptTemplate string

const (
	defaultBaseURL     = "http://localhost:11434"
	defaultModel       = "qwen2.5-coder:1.5b"
	defaultTemperature = 0.2
)

// Provider runs PR analysis against a local Ollama server. Transport and
// HTTP-level failures are returned as errors; output that cannot be
// parsed degrades to a fallback result instead.
type Provider struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	tmpl        *template.Template
}

// Option is a functional option for Provider configuration
type Option func(*Provider)

// WithBaseURL sets the Ollama server URL
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithModel sets the model name
func WithModel(m string) Option {
	return func(p *Provider) {
		p.model = m
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(p *Provider) {
		p.temperature = t
	}
}

// WithHTTPClient replaces the HTTP client, including its call timeout
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// New creates a new Ollama provider
func New(opts ...Option) (*Provider, error) {
	tmpl, err := template.New("pr_analysis").Parse(promptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis prompt template")
	}

	p := &Provider{
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		tmpl:        tmpl,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Analyze sends one generation request and parses the model output into
// an AnalysisResult
func (p *Provider) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error) {
	prompt, err := p.buildPrompt(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(generateRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: p.temperature},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal generate request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call ollama", goerr.V("base_url", p.baseURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("ollama API error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(msg)),
		)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ollama response")
	}

	return parseResult(ctx, genResp.Response, req), nil
}

func (p *Provider) buildPrompt(req *model.AnalysisRequest) (string, error) {
	desc := req.Description
	if desc == "" {
		desc = "(none)"
	}
	author := req.Author
	if author == "" {
		author = "(unknown)"
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, map[string]string{
		"Title":       req.Title,
		"Description": desc,
		"Author":      author,
		"Diff":        req.Diff,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render analysis prompt")
	}
	return buf.String(), nil
}

// parseResult extracts the first JSON object embedded in the model
// output. Malformed output degrades to the fixed fallback, never an
// error, so the pipeline always receives a valid result.
func parseResult(ctx context.Context, text string, req *model.AnalysisRequest) *model.AnalysisResult {
	var result model.AnalysisResult
	if err := jsonex.Unmarshal([]byte(text), &result); err != nil {
		ctxlog.From(ctx).Warn("failed to parse model output",
			"error", err,
			"output_length", len(text),
		)
		return model.MalformedOutputResult(req.Title)
	}

	if result.QualityScore < 1 || result.QualityScore > 10 {
		ctxlog.From(ctx).Warn("model output missing a valid quality score",
			"quality_score", result.QualityScore,
		)
		return model.MalformedOutputResult(req.Title)
	}

	return &result
}
