package dialogue

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptTimeout reports that the budget elapsed before the attempt
// produced a result.
var ErrAttemptTimeout = errors.New("dialogue: attempt timed out")

// AttemptFunc is one unit of work raced against a deadline.
type AttemptFunc func(ctx context.Context) (string, error)

// RunBounded races fn against the budget and returns whichever resolves
// first. On timeout the loser is abandoned: its context is cancelled,
// but a call with no cancellation hook simply has its late result
// dropped. Both the synchronous reply path and the callback worker use
// this same primitive.
func RunBounded(ctx context.Context, budget time.Duration, fn AttemptFunc) (string, error) {
	if budget <= 0 {
		return "", ErrAttemptTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := fn(attemptCtx)
		done <- outcome{text: text, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.text, out.err
	case <-timer.C:
		return "", ErrAttemptTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
