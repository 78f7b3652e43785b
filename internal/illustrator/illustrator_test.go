package illustrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/render"
)

type fakeCharts struct {
	err   error
	calls int
}

func (f *fakeCharts) RenderChart(_ context.Context, _ deck.ChartData, kind render.ChartKind, title string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/charts/" + title + "_" + string(kind) + ".png", nil
}

type fakeImages struct {
	err   error
	calls int
}

func (f *fakeImages) FindImage(_ context.Context, query string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://images.example/" + query, nil
}

func chartReq(slide int) Request {
	return Request{
		SlideNumber: slide,
		VisualRequest: deck.ChartRequest("growth", deck.ChartData{
			Labels: []string{"A", "B"}, Values: []float64{1, 2}, Unit: "%",
		}),
	}
}

func TestIllustrateMixedBatch(t *testing.T) {
	charts := &fakeCharts{}
	images := &fakeImages{}
	il := New(charts, images, nil)

	results := il.Illustrate(context.Background(), []Request{
		chartReq(1),
		{SlideNumber: 2, VisualRequest: deck.ImageRequest("robot")},
	})

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Equal(t, deck.KindChart, results[0].Asset.Kind)
	assert.Equal(t, 1, results[0].Asset.SlideNumber)
	assert.Equal(t, "/charts/growth_bar.png", results[0].Asset.Path)

	require.NoError(t, results[1].Err)
	assert.Equal(t, deck.KindImage, results[1].Asset.Kind)
	assert.Equal(t, "https://images.example/robot", results[1].Asset.Path)
}

func TestIllustrateFailureDoesNotAbortBatch(t *testing.T) {
	charts := &fakeCharts{err: errors.New("rasterizer down")}
	images := &fakeImages{}
	il := New(charts, images, nil)

	results := il.Illustrate(context.Background(), []Request{
		chartReq(1),
		{SlideNumber: 2, VisualRequest: deck.ImageRequest("robot")},
	})

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, images.calls, "image request still ran")

	assets := Assets(results)
	require.Len(t, assets, 1)
	assert.Equal(t, 2, assets[0].SlideNumber)
}

func TestIllustrateChartWithoutDataFails(t *testing.T) {
	charts := &fakeCharts{}
	il := New(charts, &fakeImages{}, nil)

	results := il.Illustrate(context.Background(), []Request{
		{SlideNumber: 1, VisualRequest: deck.VisualRequest{Kind: deck.KindChart, Prompt: "no data"}},
	})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 0, charts.calls, "no render call without data")
}

func TestIllustrateUnknownKind(t *testing.T) {
	il := New(&fakeCharts{}, &fakeImages{}, nil)

	results := il.Illustrate(context.Background(), []Request{
		{SlideNumber: 1, VisualRequest: deck.VisualRequest{Kind: "video", Prompt: "intro"}},
	})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, Assets(results))
}
