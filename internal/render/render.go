// Package render defines the external rendering collaborators: the
// document writer, the chart rasterizer, and the stock image lookup.
// Their internals (office document format, rasterization) live out of
// process; this package only carries the contracts and a thin HTTP
// client speaking to the render service.
package render

import (
	"context"
	"fmt"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
)

// ChartKind selects how a numeric series is drawn.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// DocumentRenderer turns finalized slide content into a stored
// presentation file and returns its path.
type DocumentRenderer interface {
	Render(ctx context.Context, filename string, slides []deck.SlideContent) (string, error)
}

// ChartRenderer rasterizes a labeled numeric series into an image file
// and returns its path.
type ChartRenderer interface {
	RenderChart(ctx context.Context, data deck.ChartData, kind ChartKind, title string) (string, error)
}

// ImageFinder resolves a descriptive query to a stock image URL.
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (string, error)
}

// Error represents a failure reported by the render service.
type Error struct {
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("render %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
