package github

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/assayer/pkg/domain/types"
)

const (
	maxRateLimitRetries = 2
	maxBackoff          = 30 * time.Second
)

// retryState tracks attempts for one logical API call. It lives only for
// the duration of that call.
type retryState struct {
	attempt          int
	rateLimitRetries int
}

// withRetry runs one logical API call with the rate-limit and backoff
// policy:
//   - secondary (abuse) rate limits fail immediately, retrying risks
//     compounding the penalty
//   - primary rate limits are retried up to 2 additional times, waiting
//     for the server-announced reset
//   - 400/401/403/404/422 fail immediately
//   - anything else (5xx, network) gets exponential backoff,
//     min(2^attempt * base, 30s), up to 3 attempts total
//
// Each attempt is bounded by the client's call timeout. Waits honor ctx.
func (c *Client) withRetry(ctx context.Context, call string, fn func(ctx context.Context) error) error {
	logger := ctxlog.From(ctx)
	var state retryState

	for {
		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		state.attempt++

		var abuseErr *github.AbuseRateLimitError
		if errors.As(err, &abuseErr) {
			return goerr.Wrap(err, "secondary rate limit hit",
				goerr.T(types.ErrTagRateLimited), goerr.V("call", call))
		}

		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			if state.rateLimitRetries >= maxRateLimitRetries {
				return goerr.Wrap(err, "primary rate limit retries exhausted",
					goerr.T(types.ErrTagRateLimited), goerr.V("call", call))
			}
			state.rateLimitRetries++

			delay := time.Until(rateErr.Rate.Reset.Time)
			if delay < 0 {
				delay = 0
			}
			logger.Warn("primary rate limit hit, waiting for reset",
				"call", call,
				"delay", delay,
				"retry", state.rateLimitRetries,
			)
			if err := sleep(ctx, delay); err != nil {
				return goerr.Wrap(err, "cancelled while waiting for rate limit reset", goerr.V("call", call))
			}
			continue
		}

		if tag, fatal := classify(err); fatal {
			return goerr.Wrap(err, "non-retryable GitHub API error",
				tag, goerr.V("call", call))
		}

		if state.attempt >= c.maxAttempts {
			return goerr.Wrap(err, "GitHub API retries exhausted",
				goerr.T(types.ErrTagUpstream),
				goerr.V("call", call),
				goerr.V("attempts", state.attempt),
			)
		}

		delay := c.backoff(state.attempt)
		logger.Warn("transient GitHub API failure, backing off",
			"call", call,
			"error", err,
			"delay", delay,
			"attempt", state.attempt,
		)
		if err := sleep(ctx, delay); err != nil {
			return goerr.Wrap(err, "cancelled during backoff", goerr.V("call", call))
		}
	}
}

// classify maps an API error to an error tag option. The bool reports
// whether the failure is non-retryable. Rate limit errors are classified
// by the caller before this point. goerr does not export its tag type,
// so the tag is returned already wrapped in a goerr option.
func classify(err error) (goerr.Option, bool) {
	var apiErr *github.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return goerr.T(types.ErrTagUpstream), false
	}

	switch apiErr.Response.StatusCode {
	case 404:
		return goerr.T(types.ErrTagNotFound), true
	case 403:
		return goerr.T(types.ErrTagAccessDenied), true
	case 400, 401, 422:
		return goerr.T(types.ErrTagUpstream), true
	default:
		return goerr.T(types.ErrTagUpstream), false
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := time.Duration(1<<attempt) * c.backoffBase
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// sleep waits for d without blocking other deliveries, aborting when ctx
// is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
