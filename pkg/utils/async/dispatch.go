package async

import (
	"context"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a detached goroutine after the caller has
// committed its HTTP response. The handler gets a fresh background
// context so cancellation of the request context cannot interrupt it,
// while the ctxlog logger is preserved. Panics are recovered and logged
// with a stack trace; errors are logged and reported to Sentry (a no-op
// when Sentry is not initialized). Failures never propagate back to the
// caller.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	newCtx := detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async task",
					"task", name,
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async task", "task", name, "error", err)
			sentry.CaptureException(err)
		}
	}()
}

// detach builds a new background context carrying over the ctxlog logger
func detach(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
