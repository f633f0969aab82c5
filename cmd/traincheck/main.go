// Package main validates a fine-tuning configuration before it is handed to
// the external training framework
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/courtside-ml/takeforge/internal/training"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML pipeline config (defaults apply when empty)")
	trainConfigPath := flag.String("train-config", "configs/train_config.yaml", "path to training config YAML")
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

	logger := logging.GetPipelineLogger("training", "check")

	trainConfig, err := training.LoadTrainingConfig(*trainConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Training config rejected")
	}

	for _, path := range []string{trainConfig.Data.TrainPath, trainConfig.Data.ValPath} {
		if _, err := os.Stat(path); err != nil {
			logger.Warn().Str("path", path).Msg("Shard not found, run curate first")
		}
	}

	logger.Info().
		Str("model", trainConfig.Model.Name).
		Int("max_seq_length", trainConfig.Model.MaxSeqLength).
		Int("lora_r", trainConfig.LoRA.R).
		Int("epochs", trainConfig.Training.NumTrainEpochs).
		Str("output_dir", trainConfig.Output.Dir).
		Msg("Training config is valid")
}

func loadConfig(path string) (*pipeline.PipelineConfig, error) {
	if path == "" {
		return pipeline.DefaultPipelineConfig(), nil
	}
	return pipeline.LoadPipelineConfig(path)
}
