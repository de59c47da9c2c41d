package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/assayer/pkg/domain/model"
	"github.com/m-mizutani/assayer/pkg/domain/types"
	githubinfra "github.com/m-mizutani/assayer/pkg/infra/github"
)

func testRef() *model.PullRequestRef {
	return &model.PullRequestRef{
		Owner:   "octocat",
		Repo:    "hello-world",
		Number:  5,
		HeadSHA: "abc123",
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *githubinfra.Client {
	t.Helper()
	client, err := githubinfra.NewClient(
		githubinfra.WithToken("test-token"),
		githubinfra.WithBaseURL(srv.URL),
		githubinfra.WithBackoffBase(time.Millisecond),
		githubinfra.WithCallTimeout(5*time.Second),
	)
	gt.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_GetPullRequestDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/pulls/5/files"):
			writeJSON(w, http.StatusOK, []map[string]any{
				{"filename": "main.go", "patch": "@@ -1 +1 @@\n-old\n+new"},
				{"filename": "README.md"}, // no patch (e.g. binary)
			})
		case strings.HasSuffix(r.URL.Path, "/pulls/5"):
			writeJSON(w, http.StatusOK, map[string]any{
				"number":        5,
				"title":         "Fix memory leak",
				"body":          "Fixes a small leak",
				"user":          map[string]any{"login": "octocat"},
				"additions":     150,
				"deletions":     80,
				"changed_files": 2,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	detail, err := client.GetPullRequestDetail(context.Background(), testRef())
	gt.NoError(t, err)
	gt.Value(t, detail.Title).Equal("Fix memory leak")
	gt.Value(t, detail.Body).Equal("Fixes a small leak")
	gt.Value(t, detail.Author).Equal("octocat")
	gt.Value(t, detail.Additions).Equal(150)
	gt.Value(t, detail.Deletions).Equal(80)
	gt.Value(t, detail.FilesChanged).Equal(2)
	gt.True(t, strings.Contains(detail.Diff, "diff --git a/main.go b/main.go"))
	gt.True(t, strings.Contains(detail.Diff, "+new"))
	gt.True(t, !strings.Contains(detail.Diff, "README.md"))
}

func TestClient_NonRetryableStatus(t *testing.T) {
	// goerr does not export its tag type, so each expected tag is held
	// behind a HasTag closure instead of stored directly in the table.
	tests := []struct {
		status  int
		wantTag func(error) bool
	}{
		{status: 400, wantTag: func(err error) bool { return goerr.HasTag(err, types.ErrTagUpstream) }},
		{status: 401, wantTag: func(err error) bool { return goerr.HasTag(err, types.ErrTagUpstream) }},
		{status: 403, wantTag: func(err error) bool { return goerr.HasTag(err, types.ErrTagAccessDenied) }},
		{status: 404, wantTag: func(err error) bool { return goerr.HasTag(err, types.ErrTagNotFound) }},
		{status: 422, wantTag: func(err error) bool { return goerr.HasTag(err, types.ErrTagUpstream) }},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d fails on first attempt", tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				// 403 without rate limit headers is a permission failure
				writeJSON(w, tt.status, map[string]any{"message": "nope"})
			}))
			defer srv.Close()

			client := newTestClient(t, srv)

			_, err := client.GetPullRequestDetail(context.Background(), testRef())
			gt.Error(t, err)
			gt.True(t, tt.wantTag(err))
			gt.Value(t, calls.Load()).Equal(int32(1))
		})
	}
}

func TestClient_TransientFailureBackoff(t *testing.T) {
	t.Run("retries exhausted after 3 attempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "upstream broke"})
		}))
		defer srv.Close()

		client := newTestClient(t, srv)

		err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
			Summary:      "ok",
			QualityScore: 8,
			Suggestions:  []string{"none"},
		})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagUpstream))
		gt.Value(t, calls.Load()).Equal(int32(3))
	})

	t.Run("recovers when a later attempt succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "busy"})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
		}))
		defer srv.Close()

		client := newTestClient(t, srv)

		err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
			Summary:      "ok",
			QualityScore: 8,
			Suggestions:  []string{"none"},
		})
		gt.NoError(t, err)
		gt.Value(t, calls.Load()).Equal(int32(3))
	})
}

func TestClient_PrimaryRateLimit(t *testing.T) {
	rateLimited := func(w http.ResponseWriter) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(-time.Second).Unix(), 10))
		writeJSON(w, http.StatusForbidden, map[string]any{
			"message": "API rate limit exceeded for 127.0.0.1.",
		})
	}

	t.Run("waits for reset and retries up to 3 attempts total", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			rateLimited(w)
		}))
		defer srv.Close()

		client := newTestClient(t, srv)

		err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
			Summary:      "ok",
			QualityScore: 8,
			Suggestions:  []string{"none"},
		})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagRateLimited))
		gt.Value(t, calls.Load()).Equal(int32(3))
	})

	t.Run("succeeds after the limit clears", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				rateLimited(w)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
		}))
		defer srv.Close()

		client := newTestClient(t, srv)

		err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
			Summary:      "ok",
			QualityScore: 8,
			Suggestions:  []string{"none"},
		})
		gt.NoError(t, err)
		gt.Value(t, calls.Load()).Equal(int32(2))
	})
}

func TestClient_SecondaryRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusForbidden, map[string]any{
			"message":           "You have exceeded a secondary rate limit. Please wait a few minutes before you try again.",
			"documentation_url": "https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
		Summary:      "ok",
		QualityScore: 8,
		Suggestions:  []string{"none"},
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagRateLimited))
	gt.Value(t, calls.Load()).Equal(int32(1))
}

func TestClient_CheckRunPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.True(t, strings.HasSuffix(r.URL.Path, "/check-runs"))
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	err := client.CreateCheckRun(context.Background(), testRef(), &model.AnalysisResult{
		Summary:        "Solid change",
		QualityScore:   9,
		Suggestions:    []string{"Add a regression test"},
		PotentialRisks: []string{"Touches the hot path"},
	})
	gt.NoError(t, err)

	gt.Value(t, got["name"]).Equal("AI Code Review")
	gt.Value(t, got["head_sha"]).Equal("abc123")
	gt.Value(t, got["conclusion"]).Equal("success")

	output := gt.Cast[map[string]any](t, got["output"])
	gt.Value(t, output["title"]).Equal("AI Code Review: 9/10")
	gt.Value(t, output["summary"]).Equal("Solid change")
	text := gt.Cast[string](t, output["text"])
	gt.True(t, strings.Contains(text, "Add a regression test"))
	gt.True(t, strings.Contains(text, "Potential Risks"))
}

func TestClient_RequiresCredentials(t *testing.T) {
	_, err := githubinfra.NewClient()
	gt.Error(t, err)
}
