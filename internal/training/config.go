package training

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrainingConfig is the contract handed to the external fine-tuning
// framework: model identity, adapter hyperparameters, trainer arguments and
// shard paths. The framework itself is out of scope; this adapter only
// loads, validates and passes the configuration through.
type TrainingConfig struct {
	Model    ModelConfig  `yaml:"model"`
	LoRA     LoRAConfig   `yaml:"lora"`
	Training TrainerArgs  `yaml:"training"`
	Data     DataConfig   `yaml:"data"`
	Output   OutputConfig `yaml:"output"`
}

// ModelConfig identifies the base model and numeric setup
type ModelConfig struct {
	Name         string `yaml:"name"`
	MaxSeqLength int    `yaml:"max_seq_length"`
	Dtype        string `yaml:"dtype"`
	LoadIn4Bit   bool   `yaml:"load_in_4bit"`
}

// LoRAConfig holds the adapter hyperparameters
type LoRAConfig struct {
	R                        int      `yaml:"r"`
	LoraAlpha                int      `yaml:"lora_alpha"`
	LoraDropout              float64  `yaml:"lora_dropout"`
	TargetModules            []string `yaml:"target_modules"`
	Bias                     string   `yaml:"bias"`
	UseGradientCheckpointing bool     `yaml:"use_gradient_checkpointing"`
}

// TrainerArgs mirrors the external trainer's argument surface
type TrainerArgs struct {
	NumTrainEpochs            int     `yaml:"num_train_epochs"`
	PerDeviceTrainBatchSize   int     `yaml:"per_device_train_batch_size"`
	GradientAccumulationSteps int     `yaml:"gradient_accumulation_steps"`
	LearningRate              float64 `yaml:"learning_rate"`
	LRSchedulerType           string  `yaml:"lr_scheduler_type"`
	WarmupSteps               int     `yaml:"warmup_steps"`
	Optim                     string  `yaml:"optim"`
	WeightDecay               float64 `yaml:"weight_decay"`
	FP16                      bool    `yaml:"fp16"`
	BF16                      bool    `yaml:"bf16"`
	LoggingSteps              int     `yaml:"logging_steps"`
	SaveStrategy              string  `yaml:"save_strategy"`
	Seed                      int     `yaml:"seed"`
}

// DataConfig points at the curated shards and the persona prompt
type DataConfig struct {
	TrainPath        string `yaml:"train_path"`
	ValPath          string `yaml:"val_path"`
	SystemPromptPath string `yaml:"system_prompt_path"`
}

// OutputConfig names the persisted adapter directory
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoadTrainingConfig reads and validates a training configuration file
func LoadTrainingConfig(path string) (*TrainingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read training config %s: %w", path, err)
	}
	var config TrainingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse training config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the fields the downstream trainer cannot default
func (tc *TrainingConfig) Validate() error {
	if tc.Model.Name == "" {
		return fmt.Errorf("training config: model name is required")
	}
	if tc.Model.MaxSeqLength <= 0 {
		return fmt.Errorf("training config: max_seq_length must be positive")
	}
	if tc.Data.TrainPath == "" || tc.Data.ValPath == "" {
		return fmt.Errorf("training config: train_path and val_path are required")
	}
	if tc.Output.Dir == "" {
		return fmt.Errorf("training config: output dir is required")
	}
	if tc.LoRA.R <= 0 {
		return fmt.Errorf("training config: lora r must be positive")
	}
	return nil
}
