package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonkmatsumo/deck-forge/internal/observability"
)

var (
	genTopic  string
	genSlides int
	genJobID  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one deck from the command line",
	Long:  `Run the full pipeline for a single topic and print the path of the rendered document.`,
	RunE:  runGenerate,
}

func init() {
	addConfigFlags(generateCmd)
	generateCmd.Flags().StringVarP(&genTopic, "topic", "t", "", "Presentation topic")
	generateCmd.Flags().IntVarP(&genSlides, "slides", "n", 5, "Number of slides")
	generateCmd.Flags().StringVar(&genJobID, "job-id", "", "Job identifier (optional, generated if omitted)")
	_ = generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if genSlides <= 0 {
		return fmt.Errorf("--slides must be positive, got %d", genSlides)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := observability.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	runner, cleanup, err := buildRunner(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	job, err := runner.Run(ctx, genJobID, genTopic, genSlides)
	if err != nil {
		return fmt.Errorf("generation failed (job %s): %w", job.ID, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Deck rendered: %s (job %s)\n", job.Path, job.ID)
	return nil
}
