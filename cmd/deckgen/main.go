// Package main provides the entry point for the deck generation service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deckgen",
	Short: "Slide deck generator",
	Long:  "deckgen turns a topic into a researched, sourced, illustrated slide deck by chaining planning, research, writing, and illustration stages over a language model and a web search provider.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
