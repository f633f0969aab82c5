// Package main provides the entry point for the takeforge harvester
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/courtside-ml/takeforge/internal/harvest"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML pipeline config (defaults apply when empty)")
	campaignName := flag.String("campaign", "", "run only the named campaign")
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

	runID := uuid.New().String()
	logger := logging.GetLogger("harvester")
	logger.Info().Str("run_id", runID).Msg("Harvester starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ran := 0
	for _, campaign := range config.Harvest.Campaigns {
		if *campaignName != "" && campaign.Name != *campaignName {
			continue
		}
		ran++

		crawler := harvest.NewCrawler(config.Harvest, campaign)
		if err := crawler.Run(ctx); err != nil {
			if ctx.Err() != nil {
				logger.Warn().Str("run_id", runID).Msg("Harvest interrupted, progress checkpointed")
				return
			}
			logger.Error().Err(err).Str("campaign", campaign.Name).Msg("Campaign failed")
		}
	}

	if ran == 0 && *campaignName != "" {
		logger.Error().Str("campaign", *campaignName).Msg("No such campaign configured")
		os.Exit(1)
	}
	logger.Info().Str("run_id", runID).Int("campaigns", ran).Msg("Harvester finished")
}

func loadConfig(path string) (*pipeline.PipelineConfig, error) {
	if path == "" {
		return pipeline.DefaultPipelineConfig(), nil
	}
	return pipeline.LoadPipelineConfig(path)
}
