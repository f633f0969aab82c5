// Package main provides the entry point for synthetic example generation
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/courtside-ml/takeforge/internal/synthetic"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML pipeline config (defaults apply when empty)")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.SetupLogger(config.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	logger := logging.GetPipelineLogger("synthetic", "main")

	prompt, err := os.ReadFile(config.Curation.SystemPromptFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read system prompt")
	}

	generator, err := synthetic.NewGenerator(config.Synthetic)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create generator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generator.Run(ctx, strings.TrimSpace(string(prompt))); err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("Generation interrupted")
			return
		}
		logger.Fatal().Err(err).Msg("Generation failed")
	}
}

func loadConfig(path string) (*pipeline.PipelineConfig, error) {
	if path == "" {
		return pipeline.DefaultPipelineConfig(), nil
	}
	return pipeline.LoadPipelineConfig(path)
}
