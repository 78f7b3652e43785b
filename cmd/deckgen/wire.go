package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/config"
	"github.com/jonkmatsumo/deck-forge/internal/credibility"
	"github.com/jonkmatsumo/deck-forge/internal/illustrator"
	"github.com/jonkmatsumo/deck-forge/internal/llm"
	"github.com/jonkmatsumo/deck-forge/internal/pipeline"
	"github.com/jonkmatsumo/deck-forge/internal/planner"
	"github.com/jonkmatsumo/deck-forge/internal/render"
	"github.com/jonkmatsumo/deck-forge/internal/researcher"
	"github.com/jonkmatsumo/deck-forge/internal/search"
	"github.com/jonkmatsumo/deck-forge/internal/writer"
)

// Flags shared by serve and generate. Config file values can be
// overridden by any of these; only explicitly set flags override.
var (
	flagConfigPath   string
	flagGeminiKey    string
	flagTavilyKey    string
	flagRenderURL    string
	flagModel        string
	flagFetchWorkers int
	flagDev          bool
)

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&flagGeminiKey, "gemini-api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&flagTavilyKey, "tavily-api-key", "", "Tavily API key (optional, defaults to TAVILY_API_KEY env var)")
	cmd.Flags().StringVar(&flagRenderURL, "render-url", "", "Base URL of the render service (optional, defaults to RENDER_SERVICE_URL env var)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Gemini model name")
	cmd.Flags().IntVar(&flagFetchWorkers, "fetch-workers", 0, "Concurrent source probes during research")
	cmd.Flags().BoolVar(&flagDev, "dev", false, "Development mode: human-readable logs")
}

// resolveConfig merges file values, explicit flags, environment
// fallbacks, and defaults, in that order of precedence.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if flagConfigPath != "" {
		loaded, err := config.Load(flagConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("gemini-api-key") {
		cfg.GeminiAPIKey = flagGeminiKey
	}
	if cmd.Flags().Changed("tavily-api-key") {
		cfg.TavilyAPIKey = flagTavilyKey
	}
	if cmd.Flags().Changed("render-url") {
		cfg.RenderServiceURL = flagRenderURL
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = flagModel
	}
	if cmd.Flags().Changed("fetch-workers") {
		cfg.FetchWorkers = flagFetchWorkers
	}
	if cmd.Flags().Changed("dev") {
		cfg.Development = flagDev
	}

	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildRunner wires every collaborator into a pipeline runner. The
// returned cleanup releases the model client.
func buildRunner(ctx context.Context, cfg config.Config, log *zap.Logger) (*pipeline.Runner, func(), error) {
	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("creating model client: %w", err)
	}
	cleanup := func() { _ = client.Close() }

	opts := credibility.DefaultOptions()
	opts.Workers = cfg.FetchWorkers
	validator := credibility.NewValidator(opts, log.Named("credibility"))

	searchSvc := search.NewTavilyClient(cfg.TavilyAPIKey, nil, log.Named("search"))
	renderSvc := render.NewService(cfg.RenderServiceURL, log.Named("render"))

	runner := pipeline.NewRunner(pipeline.Config{
		Planner:     planner.New(client, log.Named("planner")),
		Researcher:  researcher.New(searchSvc, validator, client, log.Named("researcher")),
		Writer:      writer.New(client, log.Named("writer")),
		Illustrator: illustrator.New(renderSvc, renderSvc, log.Named("illustrator")),
		Renderer:    renderSvc,
		Logger:      log.Named("pipeline"),
	})
	return runner, cleanup, nil
}
