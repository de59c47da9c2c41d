package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classifying failures across the pipeline. The GitHub client
// attaches these so callers can branch on failure class without knowing
// HTTP status codes.
var (
	ErrTagInvalidSignature = goerr.NewTag("invalid_signature")
	ErrTagNotFound         = goerr.NewTag("not_found")
	ErrTagAccessDenied     = goerr.NewTag("access_denied")
	ErrTagRateLimited      = goerr.NewTag("rate_limited")
	ErrTagUpstream         = goerr.NewTag("upstream_error")
	ErrTagPersistence      = goerr.NewTag("persistence")
)
