package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so
// tests can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// defaultMaxResults caps hits per query; three raw hits per query is
// plenty once low-tier sources are filtered out.
const defaultMaxResults = 3

// TavilyClient implements Service against the Tavily REST API.
type TavilyClient struct {
	apiKey     string
	maxResults int
	exclude    []string
	client     *http.Client
	log        *zap.Logger
}

// NewTavilyClient creates a Tavily-backed search service. The excluded
// domain list defaults to DefaultBlacklist when nil.
func NewTavilyClient(apiKey string, exclude []string, log *zap.Logger) *TavilyClient {
	if exclude == nil {
		exclude = DefaultBlacklist
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TavilyClient{
		apiKey:     apiKey,
		maxResults: defaultMaxResults,
		exclude:    exclude,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search runs one query. Any transport or decode failure yields an
// empty hit list plus the error; the caller decides whether that slide
// proceeds without sources.
func (c *TavilyClient) Search(ctx context.Context, query string, depth Depth) ([]deck.SearchHit, error) {
	if depth == "" {
		depth = DepthBasic
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    string(depth),
		MaxResults:     c.maxResults,
		ExcludeDomains: c.exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request for %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d for %q", resp.StatusCode, query)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("parsing search response for %q: %w", query, err)
	}

	hits := make([]deck.SearchHit, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, deck.SearchHit{Content: r.Content, URL: r.URL})
	}

	c.log.Debug("search completed", zap.String("query", query), zap.Int("hits", len(hits)))
	return hits, nil
}
