// Package writer turns the outline and research corpus into final
// slide content, enforcing that every deck carries at least one chart.
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/prompts"
	"github.com/jonkmatsumo/deck-forge/internal/retry"
)

// ErrNoChart marks a generation that produced no chart-kind visual
// request anywhere in the deck. It is treated exactly like an empty
// response: retried within the stage budget, fatal once exhausted.
var ErrNoChart = errors.New("no chart generated")

// Writer is the writing stage.
type Writer struct {
	client llm.Client
	log    *zap.Logger
}

// New creates a writer around the given model client.
func New(client llm.Client, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{client: client, log: log}
}

// Write generates the full deck content in one model call. An empty
// response and a chart-less deck share the same retry counter; either
// condition past the budget fails the stage.
func (w *Writer) Write(ctx context.Context, topic string, outline deck.Outline, research []deck.ResearchSummary) (deck.PresentationContent, error) {
	outlineJSON, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return deck.PresentationContent{}, fmt.Errorf("encoding outline: %w", err)
	}
	researchJSON, err := json.MarshalIndent(research, "", "  ")
	if err != nil {
		return deck.PresentationContent{}, fmt.Errorf("encoding research: %w", err)
	}

	system := prompts.MustGet("writer.json", "system")
	user := prompts.Format(prompts.MustGet("writer.json", "user"), map[string]string{
		"Topic":    topic,
		"Outline":  string(outlineJSON),
		"Research": string(researchJSON),
	})

	w.log.Info("drafting deck content", zap.String("topic", topic))

	transient := func(err error) bool {
		return llm.IsEmpty(err) || errors.Is(err, ErrNoChart)
	}

	content, err := retry.Do(ctx, retry.NewBudget("writer"), transient,
		func(ctx context.Context) (deck.PresentationContent, error) {
			var out deck.PresentationContent
			if err := w.client.Complete(ctx, system, user, &out); err != nil {
				return deck.PresentationContent{}, err
			}
			if len(out.Slides) == 0 {
				return deck.PresentationContent{}, fmt.Errorf("%w: no slides in content", llm.ErrEmptyResponse)
			}
			if !out.HasChart() {
				w.log.Warn("deck came back without a chart, retrying")
				return deck.PresentationContent{}, ErrNoChart
			}
			return out, nil
		})
	if err != nil {
		return deck.PresentationContent{}, err
	}

	content.FilenameSuggestion = SanitizeFilename(content.FilenameSuggestion, topic)
	return content, nil
}

// SanitizeFilename normalizes a model-suggested filename, falling back
// to a name derived from the topic.
func SanitizeFilename(suggestion, topic string) string {
	name := strings.TrimSpace(suggestion)
	if name == "" {
		name = topic
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "presentation"
	}
	return cleaned
}
