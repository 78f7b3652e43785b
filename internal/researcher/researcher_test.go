package researcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/retry"
	"github.com/jonkmatsumo/deck-forge/internal/search"
)

type fakeSearch struct {
	mu      sync.Mutex
	hits    map[string][]deck.SearchHit
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ search.Depth) ([]deck.SearchHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[query], nil
}

// fakeRanker assigns tiers by URL prefix: "good-" URLs become tier A,
// everything else tier C.
type fakeRanker struct{}

func (fakeRanker) Rank(_ context.Context, hits []deck.SearchHit) []deck.RankedHit {
	ranked := make([]deck.RankedHit, len(hits))
	for i, h := range hits {
		tier := deck.TierC
		score := 0
		if len(h.URL) >= 5 && h.URL[:5] == "good-" {
			tier = deck.TierA
			score = 60
		}
		ranked[i] = deck.RankedHit{
			SearchHit:  h,
			Validation: deck.ValidationResult{URL: h.URL, Score: score, Tier: tier},
		}
	}
	return ranked
}

type fakeClient struct {
	responses []string
	calls     int
	lastUser  string
}

func (f *fakeClient) Complete(_ context.Context, _, user string, out any) error {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	f.lastUser = user
	if f.responses[idx] == "" {
		return llm.ErrEmptyResponse
	}
	return llm.DecodeInto(f.responses[idx], out)
}

func (f *fakeClient) Close() error { return nil }

const summaryJSON = `{"slide_topic":"AI Trends","facts":[{"content":"AI is growing fast","source_url":"good-ai.example"}]}`

func TestResearchCuratesCredibleHits(t *testing.T) {
	searchSvc := &fakeSearch{hits: map[string][]deck.SearchHit{
		"ai growth": {
			{Content: "AI market doubles", URL: "good-market.example"},
			{Content: "hot take thread", URL: "bad-forum.example"},
		},
	}}
	client := &fakeClient{responses: []string{summaryJSON}}
	r := New(searchSvc, fakeRanker{}, client, nil)

	summary, err := r.Research(context.Background(), "AI Trends", []string{"ai growth"})
	require.NoError(t, err)
	assert.Len(t, summary.Facts, 1)

	// Only the credible hit reaches the summarization prompt.
	assert.Contains(t, client.lastUser, "AI market doubles")
	assert.NotContains(t, client.lastUser, "hot take thread")
}

func TestResearchNoCredibleHitsIsValidEmpty(t *testing.T) {
	searchSvc := &fakeSearch{hits: map[string][]deck.SearchHit{
		"q1": {{Content: "spam", URL: "bad-spam.example"}},
		"q2": nil,
	}}
	client := &fakeClient{responses: []string{summaryJSON}}
	r := New(searchSvc, fakeRanker{}, client, nil)

	summary, err := r.Research(context.Background(), "Niche Topic", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, "Niche Topic", summary.SlideTopic)
	assert.Empty(t, summary.Facts)
	assert.Equal(t, 0, client.calls, "no model call without raw context")
}

func TestResearchSearchErrorDegradesToEmpty(t *testing.T) {
	searchSvc := &fakeSearch{err: errors.New("provider down")}
	client := &fakeClient{responses: []string{summaryJSON}}
	r := New(searchSvc, fakeRanker{}, client, nil)

	summary, err := r.Research(context.Background(), "AI", []string{"q"})
	require.NoError(t, err)
	assert.Empty(t, summary.Facts)
}

func TestResearchRunsAllQueries(t *testing.T) {
	searchSvc := &fakeSearch{hits: map[string][]deck.SearchHit{}}
	client := &fakeClient{responses: []string{summaryJSON}}
	r := New(searchSvc, fakeRanker{}, client, nil)

	_, err := r.Research(context.Background(), "AI", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, searchSvc.queries)
}

func TestSummarizeRetriesThenSucceeds(t *testing.T) {
	client := &fakeClient{responses: []string{"", `{"slide_topic":"","facts":[]}`, summaryJSON}}
	r := New(&fakeSearch{}, fakeRanker{}, client, nil)

	summary, err := r.Summarize(context.Background(), "raw context", "AI Trends")
	require.NoError(t, err)
	assert.Equal(t, "AI Trends", summary.SlideTopic)
	assert.Equal(t, 3, client.calls, "empty body and zero facts both consume attempts")
}

func TestSummarizeExhaustsBudget(t *testing.T) {
	client := &fakeClient{responses: []string{""}}
	r := New(&fakeSearch{}, fakeRanker{}, client, nil)

	_, err := r.Summarize(context.Background(), "raw context", "AI Trends")
	assert.True(t, retry.IsExhausted(err))
	assert.Equal(t, 3, client.calls)
}
