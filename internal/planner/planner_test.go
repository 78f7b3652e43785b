package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/retry"
)

// fakeClient replays scripted JSON responses; an empty string means the
// model returned nothing usable.
type fakeClient struct {
	responses []string
	calls     int
}

func (f *fakeClient) Complete(_ context.Context, _, _ string, out any) error {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	if f.responses[idx] == "" {
		return llm.ErrEmptyResponse
	}
	return llm.DecodeInto(f.responses[idx], out)
}

func (f *fakeClient) Close() error { return nil }

func outlineJSON(slides int) string {
	j := `{"topic":"Quantum Computing","slides":[`
	for i := 1; i <= slides; i++ {
		if i > 1 {
			j += ","
		}
		j += `{"slide_number":` + string(rune('0'+i)) + `,"title":"Slide","search_queries":["q"],"content_goal":"goal"}`
	}
	return j + `]}`
}

func TestPlanSuccess(t *testing.T) {
	client := &fakeClient{responses: []string{outlineJSON(3)}}
	p := New(client, nil)

	outline, err := p.Plan(context.Background(), "Quantum Computing", 3)
	require.NoError(t, err)
	assert.Equal(t, "Quantum Computing", outline.Topic)
	assert.Len(t, outline.Slides, 3)
	assert.Equal(t, 1, client.calls)
}

func TestPlanRetriesEmptyResponse(t *testing.T) {
	client := &fakeClient{responses: []string{"", outlineJSON(2)}}
	p := New(client, nil)

	outline, err := p.Plan(context.Background(), "AI", 2)
	require.NoError(t, err)
	assert.Len(t, outline.Slides, 2)
	assert.Equal(t, 2, client.calls)
}

func TestPlanOutlineWithoutSlidesIsEmpty(t *testing.T) {
	client := &fakeClient{responses: []string{`{"topic":"AI","slides":[]}`, outlineJSON(2)}}
	p := New(client, nil)

	_, err := p.Plan(context.Background(), "AI", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls, "a slide-less outline counts as an empty response")
}

func TestPlanExhaustsBudget(t *testing.T) {
	client := &fakeClient{responses: []string{""}}
	p := New(client, nil)

	_, err := p.Plan(context.Background(), "AI", 2)
	assert.True(t, retry.IsExhausted(err))
	assert.Equal(t, 3, client.calls, "exactly the cap, never a fourth attempt")
}

func TestPlanSlideCountMismatchIsFatal(t *testing.T) {
	client := &fakeClient{responses: []string{outlineJSON(2)}}
	p := New(client, nil)

	_, err := p.Plan(context.Background(), "AI", 3)

	var mismatch *SlideCountError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Want)
	assert.Equal(t, 2, mismatch.Got)
	assert.Equal(t, 1, client.calls, "a deterministic mismatch is not retried")
}
