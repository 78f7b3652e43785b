// Package search provides the web search collaborator used by the
// research stage.
package search

import (
	"context"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
)

// Depth selects how thorough a search should be.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// DefaultBlacklist lists domains that never count as citable sources.
var DefaultBlacklist = []string{
	"reddit.com",
	"quora.com",
	"twitter.com",
	"facebook.com",
	"instagram.com",
}

// Service issues one search query and returns raw hits. Provider
// failures come back as an empty result with the error; callers treat
// that as "nothing found", not as a fatal condition.
type Service interface {
	Search(ctx context.Context, query string, depth Depth) ([]deck.SearchHit, error)
}
