// Package researcher gathers and curates the facts behind each slide.
// It searches the web per query, keeps only credible sources, and has
// the model distill the surviving content into citable facts.
package researcher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonkmatsumo/deck-forge/internal/credibility"
	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/prompts"
	"github.com/jonkmatsumo/deck-forge/internal/retry"
	"github.com/jonkmatsumo/deck-forge/internal/search"
)

// Ranker scores a batch of raw hits. Satisfied by
// *credibility.Validator.
type Ranker interface {
	Rank(ctx context.Context, hits []deck.SearchHit) []deck.RankedHit
}

// Researcher is the research stage.
type Researcher struct {
	search search.Service
	ranker Ranker
	client llm.Client
	log    *zap.Logger
}

// New creates a researcher around its collaborators.
func New(searchSvc search.Service, ranker Ranker, client llm.Client, log *zap.Logger) *Researcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Researcher{search: searchSvc, ranker: ranker, client: client, log: log}
}

// Research runs every query for one slide, keeps tier S/A sources, and
// summarizes what survives. Queries are independent and run
// concurrently; the assembled context follows query order regardless of
// completion order. A slide with zero credible hits yields a summary
// with no facts, which is a valid outcome, not an error.
func (r *Researcher) Research(ctx context.Context, slideTitle string, queries []string) (deck.ResearchSummary, error) {
	contexts := make([]string, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			hits, err := r.search.Search(gctx, query, search.DepthBasic)
			if err != nil {
				// Provider failures degrade to "nothing found".
				r.log.Warn("search failed", zap.String("query", query), zap.Error(err))
				return nil
			}
			if len(hits) == 0 {
				return nil
			}

			credible := credibility.FilterCredible(r.ranker.Rank(gctx, hits))
			if len(credible) == 0 {
				r.log.Info("no credible sources", zap.String("query", query))
				return nil
			}

			var b strings.Builder
			for _, hit := range credible {
				fmt.Fprintf(&b, "%s (source: %s)\n", hit.Content, hit.Validation.URL)
			}
			contexts[i] = b.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return deck.ResearchSummary{}, err
	}

	var kept []string
	for _, c := range contexts {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return deck.ResearchSummary{SlideTopic: slideTitle}, nil
	}

	return r.Summarize(ctx, strings.Join(kept, "\n"), slideTitle)
}

// Summarize distills raw search context into 5-10 verified facts with
// source URLs. Empty model output is retried within the stage budget.
func (r *Researcher) Summarize(ctx context.Context, rawContext, slideTitle string) (deck.ResearchSummary, error) {
	system := prompts.MustGet("researcher.json", "system")
	user := prompts.Format(prompts.MustGet("researcher.json", "user"), map[string]string{
		"SlideTitle": slideTitle,
		"RawContext": rawContext,
	})

	summary, err := retry.Do(ctx, retry.NewBudget("researcher"), llm.IsEmpty,
		func(ctx context.Context) (deck.ResearchSummary, error) {
			var out deck.ResearchSummary
			if err := r.client.Complete(ctx, system, user, &out); err != nil {
				return deck.ResearchSummary{}, err
			}
			if len(out.Facts) == 0 {
				return deck.ResearchSummary{}, fmt.Errorf("%w: no facts extracted", llm.ErrEmptyResponse)
			}
			return out, nil
		})
	if err != nil {
		return deck.ResearchSummary{}, err
	}

	if summary.SlideTopic == "" {
		summary.SlideTopic = slideTitle
	}
	r.log.Info("facts curated",
		zap.String("slide", slideTitle), zap.Int("facts", len(summary.Facts)))
	return summary, nil
}
