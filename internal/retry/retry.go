// Package retry implements the bounded-attempt contract every
// generation stage applies to unreliable model output. The budget is a
// value scoped to one stage call within one job; it is never stored on
// anything that outlives the call, so counters cannot leak across jobs
// or across slides.
package retry

import (
	"context"
	"errors"
	"fmt"
)

// DefaultCap is the shared attempt cap for all stages.
const DefaultCap = 3

// Budget bounds one stage invocation.
type Budget struct {
	Stage string
	Cap   int
}

// NewBudget returns a budget with the default cap.
func NewBudget(stage string) Budget {
	return Budget{Stage: stage, Cap: DefaultCap}
}

// ExhaustedError reports a stage that burned its whole budget on
// transient failures. It wraps the last failure so callers can see the
// exhausted condition.
type ExhaustedError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %v after %d attempts", e.Stage, e.Err, e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsExhausted reports whether err is a spent retry budget.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}

// Do invokes fn up to b.Cap times. Errors for which transient returns
// true consume an attempt and trigger another try; any other error
// stops immediately and is returned as-is. Once the budget is spent the
// last transient error is wrapped in an ExhaustedError. fn is never
// invoked a cap+1-th time.
func Do[T any](ctx context.Context, b Budget, transient func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if b.Cap <= 0 {
		b.Cap = DefaultCap
	}

	var lastErr error
	for attempt := 1; attempt <= b.Cap; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !transient(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, &ExhaustedError{Stage: b.Stage, Attempts: b.Cap, Err: lastErr}
}
