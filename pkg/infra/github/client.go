package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

const (
	checkRunName  = "AI Code Review"
	maxFilesPerPR = 100
)

// Client wraps the GitHub REST API with authentication, rate-limit
// handling and bounded retries. One Client is shared by all deliveries;
// per-installation clients are derived lazily and cached.
type Client struct {
	token         string
	appsTransport *ghinstallation.AppsTransport
	baseURL       string
	callTimeout   time.Duration
	maxAttempts   int
	backoffBase   time.Duration
	appKeyErr     error

	mu       sync.Mutex
	installs map[int64]*github.Client
	tokenCli *github.Client
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithToken enables plain token authentication (personal access token)
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithAppCredentials enables GitHub App authentication. Installation
// clients are derived from the webhook's installation ID per call.
func WithAppCredentials(appID int64, privateKey []byte) Option {
	return func(c *Client) {
		atr, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKey)
		if err != nil {
			c.appKeyErr = goerr.Wrap(err, "failed to create GitHub App transport", goerr.V("app_id", appID))
			return
		}
		c.appsTransport = atr
	}
}

// WithBaseURL points the client at a non-default API endpoint
// (GitHub Enterprise, or a test server)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithCallTimeout bounds the wall-clock time of a single API attempt
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.callTimeout = d
	}
}

// WithBackoffBase overrides the base delay of the exponential backoff
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = d
	}
}

// NewClient creates a new GitHub API client. Either a token or App
// credentials must be provided.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		callTimeout: 30 * time.Second,
		maxAttempts: 3,
		backoffBase: time.Second,
		installs:    make(map[int64]*github.Client),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.appKeyErr != nil {
		return nil, c.appKeyErr
	}
	if c.token == "" && c.appsTransport == nil {
		return nil, goerr.New("no GitHub credentials: set a token or App credentials")
	}

	if c.appsTransport != nil && c.baseURL != "" {
		c.appsTransport.BaseURL = strings.TrimSuffix(c.baseURL, "/")
	}
	if c.token != "" {
		c.tokenCli = c.newGitHubClient(nil).WithAuthToken(c.token)
	}

	return c, nil
}

// NewClientFromConfig creates a Client for App auth with the private key
// given as a PEM string
func NewClientFromConfig(appID int64, privateKey string, opts ...Option) (*Client, error) {
	opts = append([]Option{WithAppCredentials(appID, []byte(privateKey))}, opts...)
	return NewClient(opts...)
}

func (c *Client) newGitHubClient(rt http.RoundTripper) *github.Client {
	gh := github.NewClient(&http.Client{Transport: rt})
	if c.baseURL != "" {
		if u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/"); err == nil {
			gh.BaseURL = u
			gh.UploadURL = u
		}
	}
	return gh
}

// clientFor returns a client authenticated for the given installation.
// Token auth ignores the installation ID.
func (c *Client) clientFor(installationID int64) (*github.Client, error) {
	if c.tokenCli != nil {
		return c.tokenCli, nil
	}

	if installationID <= 0 {
		return nil, goerr.New("webhook event carries no installation ID", goerr.V("installation_id", installationID))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gh, ok := c.installs[installationID]; ok {
		return gh, nil
	}

	itr := ghinstallation.NewFromAppsTransport(c.appsTransport, installationID)
	gh := c.newGitHubClient(itr)
	c.installs[installationID] = gh
	return gh, nil
}

// GetPullRequestDetail fetches PR metadata and the changed-file list,
// and assembles a unified diff from the per-file patches
func (c *Client) GetPullRequestDetail(ctx context.Context, ref *model.PullRequestRef) (*model.PullRequestDetail, error) {
	gh, err := c.clientFor(ref.InstallationID)
	if err != nil {
		return nil, err
	}

	var pr *github.PullRequest
	if err := c.withRetry(ctx, "pulls.get", func(ctx context.Context) error {
		got, _, err := gh.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return err
		}
		pr = got
		return nil
	}); err != nil {
		return nil, err
	}

	var files []*github.CommitFile
	if err := c.withRetry(ctx, "pulls.files", func(ctx context.Context) error {
		got, _, err := gh.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, &github.ListOptions{
			PerPage: maxFilesPerPR,
		})
		if err != nil {
			return err
		}
		files = got
		return nil
	}); err != nil {
		return nil, err
	}

	return buildDetail(pr, files), nil
}

// buildDetail maps raw API data into the analysis-facing detail
func buildDetail(pr *github.PullRequest, files []*github.CommitFile) *model.PullRequestDetail {
	var diff strings.Builder
	for _, f := range files {
		if f.GetPatch() == "" {
			continue
		}
		fmt.Fprintf(&diff, "diff --git a/%s b/%s\n%s\n", f.GetFilename(), f.GetFilename(), f.GetPatch())
	}

	return &model.PullRequestDetail{
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		Author:       pr.GetUser().GetLogin(),
		Diff:         diff.String(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		FilesChanged: pr.GetChangedFiles(),
	}
}

// CreateCheckRun publishes the analysis result as a completed check run
// on the head commit
func (c *Client) CreateCheckRun(ctx context.Context, ref *model.PullRequestRef, result *model.AnalysisResult) error {
	gh, err := c.clientFor(ref.InstallationID)
	if err != nil {
		return err
	}

	opts := github.CreateCheckRunOptions{
		Name:       checkRunName,
		HeadSHA:    ref.HeadSHA,
		Status:     github.String("completed"),
		Conclusion: github.String(conclusionFor(result.QualityScore)),
		Output: &github.CheckRunOutput{
			Title:   github.String(fmt.Sprintf("AI Code Review: %d/10", result.QualityScore)),
			Summary: github.String(result.Summary),
			Text:    github.String(formatCheckRunText(result)),
		},
	}

	return c.withRetry(ctx, "checks.create", func(ctx context.Context) error {
		_, _, err := gh.Checks.CreateCheckRun(ctx, ref.Owner, ref.Repo, opts)
		return err
	})
}

func conclusionFor(score int) string {
	if score >= 6 {
		return "success"
	}
	return "neutral"
}

func formatCheckRunText(result *model.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("## Suggestions\n")
	for _, s := range result.Suggestions {
		sb.WriteString("- " + s + "\n")
	}

	if len(result.PotentialRisks) > 0 {
		sb.WriteString("\n## Potential Risks\n")
		for _, r := range result.PotentialRisks {
			sb.WriteString("- " + r + "\n")
		}
	}

	return sb.String()
}
