package remote

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cenkalti/backoff/v5"

	"github.com/fastbreaklabs/rosterstore/store"
)

// retrier runs DynamoDB calls with per-attempt timeouts and jittered
// exponential backoff on transient failures. Every remote operation goes
// through it; nothing talks to the client directly.
type retrier struct {
	cfg    Config
	logger *slog.Logger
}

// withRetry runs fn until it succeeds, fails permanently, or the attempt
// budget is spent. Each attempt gets its own deadline carved from ctx.
//
// The final error is mapped by the class of the last failure: auth
// becomes ErrAuth, server faults become ErrServer, an exhausted transient
// becomes ErrNetwork. Constraint rejections pass through untouched so the
// caller can map them with the context only it has (conflict vs
// duplicate vs missing row).
func withRetry[T any](ctx context.Context, r *retrier, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	var lastClass failureClass

	operation := func() (T, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()

		out, err := fn(attemptCtx)
		if err == nil {
			return out, nil
		}

		lastClass = classify(err)
		if lastClass != classTransient {
			return out, backoff.Permanent(err)
		}
		r.logger.Warn("transient failure",
			"op", op,
			"attempt", attempt,
			"error", err,
		)
		return out, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = r.cfg.MaxBackoff

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.MaxAttempts)),
	)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return out, err
	}

	switch lastClass {
	case classAuth:
		return out, &store.Error{Kind: store.ErrAuth, Err: err}
	case classServer:
		return out, &store.Error{Kind: store.ErrServer, Err: err}
	case classConstraint:
		return out, err
	default:
		r.logger.Error("retries exhausted", "op", op, "attempts", attempt, "error", err)
		return out, &store.Error{Kind: store.ErrNetwork, Err: err}
	}
}
