// Package planner turns a topic and slide count into a structured
// outline for the rest of the pipeline.
package planner

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/prompts"
	"github.com/jonkmatsumo/deck-forge/internal/retry"
)

// SlideCountError reports a well-formed outline whose slide count
// disagrees with the request. Retrying would not help: the mismatch is
// deterministic, so it is fatal and reported as-is instead of being
// truncated or padded.
type SlideCountError struct {
	Want int
	Got  int
}

func (e *SlideCountError) Error() string {
	return fmt.Sprintf("planner returned %d slides, requested %d", e.Got, e.Want)
}

// Planner is the planning stage.
type Planner struct {
	client llm.Client
	log    *zap.Logger
}

// New creates a planner around the given model client.
func New(client llm.Client, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{client: client, log: log}
}

// Plan produces an outline with exactly slideCount slides. Empty or
// unparseable model output is retried up to the stage budget; a slide
// count mismatch on a well-formed outline is fatal and not retried.
func (p *Planner) Plan(ctx context.Context, topic string, slideCount int) (deck.Outline, error) {
	system := prompts.MustGet("planner.json", "system")
	user := prompts.Format(prompts.MustGet("planner.json", "user"), map[string]string{
		"Topic":      topic,
		"SlideCount": strconv.Itoa(slideCount),
	})

	p.log.Info("planning deck", zap.String("topic", topic), zap.Int("slides", slideCount))

	outline, err := retry.Do(ctx, retry.NewBudget("planner"), llm.IsEmpty,
		func(ctx context.Context) (deck.Outline, error) {
			var out deck.Outline
			if err := p.client.Complete(ctx, system, user, &out); err != nil {
				return deck.Outline{}, err
			}
			if len(out.Slides) == 0 {
				return deck.Outline{}, fmt.Errorf("%w: outline has no slides", llm.ErrEmptyResponse)
			}
			return out, nil
		})
	if err != nil {
		return deck.Outline{}, err
	}

	if len(outline.Slides) != slideCount {
		return deck.Outline{}, &SlideCountError{Want: slideCount, Got: len(outline.Slides)}
	}

	if outline.Topic == "" {
		outline.Topic = topic
	}
	return outline, nil
}
