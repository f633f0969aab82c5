// Package main provides the entry point for the takeforge curation pipeline
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtside-ml/takeforge/internal/curation"
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

	logger := logging.GetPipelineLogger("curation", "main")

	processed := config.DataPaths.ProcessedDir
	if err := os.MkdirAll(processed, 0755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create processed dir")
	}

	curator := curation.NewCurator(config.Curation)
	result, err := curator.Run(
		filepath.Join(processed, "train.jsonl"),
		filepath.Join(processed, "val.jsonl"),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Curation failed")
	}

	logger.Info().
		Int("raw", result.RawItems).
		Int("filtered", result.Filtered).
		Int("deduped", result.Deduped).
		Int("synthetic", result.Synthetic).
		Int("train", result.TrainCount).
		Int("val", result.ValCount).
		Msg("Curation completed")
}

func loadConfig(path string) (*pipeline.PipelineConfig, error) {
	if path == "" {
		return pipeline.DefaultPipelineConfig(), nil
	}
	return pipeline.LoadPipelineConfig(path)
}
