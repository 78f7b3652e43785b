package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("no usable output")

func always(error) bool { return true }

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), NewBudget("planner"), always, func(context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversWithinBudget(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), NewBudget("writer"), always, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "deck", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "deck", v)
	assert.Equal(t, 3, calls)
}

func TestDoStopsExactlyAtCap(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Budget{Stage: "researcher", Cap: 3}, always, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.Equal(t, 3, calls, "a fourth attempt must never happen")

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "researcher", exhausted.Stage)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errFlaky)
	assert.True(t, IsExhausted(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoFatalErrorIsNotRetried(t *testing.T) {
	fatal := errors.New("slide count mismatch")
	calls := 0
	_, err := Do(context.Background(), NewBudget("planner"), func(err error) bool {
		return errors.Is(err, errFlaky)
	}, func(context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, fatal)
	assert.False(t, IsExhausted(err))
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, NewBudget("writer"), always, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
