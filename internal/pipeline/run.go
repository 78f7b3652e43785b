// Package pipeline orchestrates one generation job end to end:
// planning, research, writing, illustration, and the hand-off to the
// document renderer.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
	"github.com/jonkmatsumo/deck-forge/internal/illustrator"
	"github.com/jonkmatsumo/deck-forge/internal/render"
)

// Planner is the planning stage contract.
type Planner interface {
	Plan(ctx context.Context, topic string, slideCount int) (deck.Outline, error)
}

// Researcher is the research stage contract.
type Researcher interface {
	Research(ctx context.Context, slideTitle string, queries []string) (deck.ResearchSummary, error)
}

// Writer is the writing stage contract.
type Writer interface {
	Write(ctx context.Context, topic string, outline deck.Outline, research []deck.ResearchSummary) (deck.PresentationContent, error)
}

// Illustrator is the illustration stage contract.
type Illustrator interface {
	Illustrate(ctx context.Context, requests []illustrator.Request) []illustrator.Result
}

// Config wires a Runner.
type Config struct {
	Planner     Planner
	Researcher  Researcher
	Writer      Writer
	Illustrator Illustrator
	Renderer    render.DocumentRenderer
	Jobs        *Registry
	Logger      *zap.Logger
}

// Runner drives jobs through the pipeline. Each stage owns the entity
// it produces and hands an immutable snapshot to the next; all retry
// accounting lives inside the stage calls, scoped to this job.
type Runner struct {
	planner     Planner
	researcher  Researcher
	writer      Writer
	illustrator Illustrator
	renderer    render.DocumentRenderer
	jobs        *Registry
	log         *zap.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	jobs := cfg.Jobs
	if jobs == nil {
		jobs = NewRegistry()
	}
	return &Runner{
		planner:     cfg.Planner,
		researcher:  cfg.Researcher,
		writer:      cfg.Writer,
		illustrator: cfg.Illustrator,
		renderer:    cfg.Renderer,
		jobs:        jobs,
		log:         log,
	}
}

// Jobs exposes the registry for status lookups.
func (r *Runner) Jobs() *Registry {
	return r.jobs
}

// Run executes one job. An empty jobID gets a generated one. The
// returned job snapshot is terminal: done with a document path, or
// failed with the originating stage recorded.
func (r *Runner) Run(ctx context.Context, jobID, topic string, slideCount int) (Job, error) {
	if jobID == "" {
		jobID = uuid.New().String()
	}
	r.jobs.Create(jobID, topic, slideCount)
	log := r.log.With(zap.String("job_id", jobID), zap.String("topic", topic))

	log.Info("job started", zap.Int("slides", slideCount))

	outline, err := r.planner.Plan(ctx, topic, slideCount)
	if err != nil {
		return r.failed(jobID, "planning", err)
	}

	r.jobs.advance(jobID, StateResearching)
	research, err := r.researchAll(ctx, outline)
	if err != nil {
		return r.failed(jobID, "researching", err)
	}

	r.jobs.advance(jobID, StateWriting)
	content, err := r.writer.Write(ctx, topic, outline, research)
	if err != nil {
		return r.failed(jobID, "writing", err)
	}

	r.jobs.advance(jobID, StateIllustrating)
	results := r.illustrator.Illustrate(ctx, collectRequests(content))
	assets := illustrator.Assets(results)
	log.Info("visuals ready",
		zap.Int("requested", len(results)), zap.Int("rendered", len(assets)))

	r.jobs.advance(jobID, StateRendering)
	merged := deck.MergeAssets(content, assets)
	path, err := r.renderer.Render(ctx, merged.FilenameSuggestion, merged.Slides)
	if err != nil {
		return r.failed(jobID, "rendering", err)
	}

	r.jobs.complete(jobID, path)
	log.Info("job done", zap.String("path", path))

	job, _ := r.jobs.Get(jobID)
	return job, nil
}

// researchAll fans research out across slides; each slide's queries
// are independent, so slides run concurrently while results keep slide
// order. A slide without credible sources contributes an empty summary.
func (r *Runner) researchAll(ctx context.Context, outline deck.Outline) ([]deck.ResearchSummary, error) {
	summaries := make([]deck.ResearchSummary, len(outline.Slides))

	g, gctx := errgroup.WithContext(ctx)
	for i, slide := range outline.Slides {
		g.Go(func() error {
			summary, err := r.researcher.Research(gctx, slide.Title, slide.Queries)
			if err != nil {
				return fmt.Errorf("slide %d: %w", slide.Number, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// collectRequests gathers visual requests across the deck, tagging
// each with its 1-based slide number for the later merge.
func collectRequests(content deck.PresentationContent) []illustrator.Request {
	var requests []illustrator.Request
	for i, slide := range content.Slides {
		if slide.Visual == nil {
			continue
		}
		requests = append(requests, illustrator.Request{
			SlideNumber:   i + 1,
			VisualRequest: *slide.Visual,
		})
	}
	return requests
}

func (r *Runner) failed(jobID, stage string, err error) (Job, error) {
	r.jobs.fail(jobID, stage, err)
	r.log.Error("job failed",
		zap.String("job_id", jobID), zap.String("stage", stage), zap.Error(err))

	job, _ := r.jobs.Get(jobID)
	return job, fmt.Errorf("%s: %w", stage, err)
}
