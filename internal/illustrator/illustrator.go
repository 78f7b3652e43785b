// Package illustrator turns visual requests into rendered assets by
// calling the external chart and image services. Partial results are
// the expected outcome under flaky services: each request carries its
// own success or failure, and a failed request never aborts the batch.
package illustrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/render"
)

// Request pairs a visual request with the slide it belongs to.
type Request struct {
	SlideNumber int
	deck.VisualRequest
}

// Result is the outcome of one visual request. Exactly one of Asset
// and Err is meaningful; the caller decides how many failures are
// tolerable.
type Result struct {
	Asset deck.VisualAsset
	Err   error
}

// Illustrator is the illustration stage.
type Illustrator struct {
	charts render.ChartRenderer
	images render.ImageFinder
	log    *zap.Logger
}

// New creates an illustrator around the render collaborators.
func New(charts render.ChartRenderer, images render.ImageFinder, log *zap.Logger) *Illustrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Illustrator{charts: charts, images: images, log: log}
}

// Illustrate renders every request, one result per request in input
// order. Failures are logged and recorded on the result, never raised.
func (il *Illustrator) Illustrate(ctx context.Context, requests []Request) []Result {
	il.log.Info("creating visuals", zap.Int("requests", len(requests)))

	results := make([]Result, len(requests))
	for i, req := range requests {
		results[i] = il.illustrateOne(ctx, req)
		if results[i].Err != nil {
			il.log.Warn("visual request failed",
				zap.Int("slide", req.SlideNumber),
				zap.String("kind", string(req.Kind)),
				zap.Error(results[i].Err))
		}
	}
	return results
}

func (il *Illustrator) illustrateOne(ctx context.Context, req Request) Result {
	if err := req.Validate(); err != nil {
		return Result{Err: err}
	}

	switch req.Kind {
	case deck.KindChart:
		// Generated charts are always drawn as bars; the renderer's
		// line and pie kinds exist for callers with stronger opinions.
		path, err := il.charts.RenderChart(ctx, *req.Chart, render.ChartBar, req.Prompt)
		if err != nil {
			return Result{Err: fmt.Errorf("chart for slide %d: %w", req.SlideNumber, err)}
		}
		return Result{Asset: deck.VisualAsset{
			SlideNumber: req.SlideNumber,
			Kind:        deck.KindChart,
			Description: req.Prompt,
			Path:        path,
		}}

	case deck.KindImage:
		url, err := il.images.FindImage(ctx, req.Prompt)
		if err != nil {
			return Result{Err: fmt.Errorf("image for slide %d: %w", req.SlideNumber, err)}
		}
		return Result{Asset: deck.VisualAsset{
			SlideNumber: req.SlideNumber,
			Kind:        deck.KindImage,
			Description: req.Prompt,
			Path:        url,
		}}

	default:
		return Result{Err: fmt.Errorf("slide %d: unknown visual kind %q", req.SlideNumber, req.Kind)}
	}
}

// Assets extracts the successful assets from a batch of results.
func Assets(results []Result) []deck.VisualAsset {
	var assets []deck.VisualAsset
	for _, r := range results {
		if r.Err == nil {
			assets = append(assets, r.Asset)
		}
	}
	return assets
}
