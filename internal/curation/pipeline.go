package curation

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

// Result summarizes one curation run
type Result struct {
	RawItems   int `json:"raw_items"`
	Filtered   int `json:"filtered"`
	Deduped    int `json:"deduped"`
	Synthetic  int `json:"synthetic"`
	TrainCount int `json:"train_count"`
	ValCount   int `json:"val_count"`
}

// Curator runs the full curation pipeline: raw corpora in, train/validation
// shards out. The whole corpus is held in memory, which is the price of
// global near-duplicate comparison.
type Curator struct {
	config     *pipeline.CurationConfig
	cleaner    *Cleaner
	filter     *QualityFilter
	suppressor Suppressor
	templates  TemplateSet
	logger     zerolog.Logger
}

// NewCurator wires the curation stages from configuration
func NewCurator(config *pipeline.CurationConfig) *Curator {
	cleaner := NewCleaner()
	return &Curator{
		config:     config,
		cleaner:    cleaner,
		filter:     NewQualityFilter(config, cleaner),
		suppressor: NewTrigramSuppressor(config.DedupThreshold),
		templates:  DefaultTemplateSet(),
		logger:     logging.GetPipelineLogger("curation", "run"),
	}
}

// Run curates the configured raw corpora and writes the two shard files
func (c *Curator) Run(trainPath, valPath string) (*Result, error) {
	result := &Result{}

	// Load every configured raw corpus; missing files are skipped so the
	// pipeline runs on whatever campaigns have been harvested so far
	var items []corpus.RawItem
	for _, path := range c.config.RawFiles {
		loaded, err := corpus.ReadRawItems(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.logger.Warn().Str("path", path).Msg("Raw corpus missing, skipping")
				continue
			}
			return nil, err
		}
		c.logger.Info().Str("path", path).Int("items", len(loaded)).Msg("Raw corpus loaded")
		items = append(items, loaded...)
	}
	result.RawItems = len(items)

	// Filter
	var records []corpus.CuratedRecord
	for _, item := range items {
		if !c.filter.Passes(item) {
			continue
		}
		records = append(records, corpus.CuratedRecord{
			Text:  c.cleaner.Clean(item.RawText()),
			Topic: item.Topic(),
		})
	}
	result.Filtered = len(records)
	c.logger.Info().Int("kept", result.Filtered).Int("raw", result.RawItems).Msg("Filtering done")

	// Near-duplicate suppression, first occurrence wins
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	unique := c.suppressor.Suppress(texts)
	retained := make(map[string]struct{}, len(unique))
	for _, text := range unique {
		retained[text] = struct{}{}
	}
	deduped := records[:0]
	for _, record := range records {
		if _, ok := retained[record.Text]; ok {
			deduped = append(deduped, record)
		}
	}
	records = deduped
	result.Deduped = len(records)
	c.logger.Info().Int("kept", result.Deduped).Msg("Near-duplicate suppression done")

	// Format conversations with a seeded source so runs reproduce exactly
	system, err := c.loadSystemPrompt()
	if err != nil {
		return nil, err
	}
	formatter := NewConversationFormatter(system, c.templates)
	rng := rand.New(rand.NewSource(c.config.Seed))

	examples := make([]corpus.Example, 0, len(records))
	for _, record := range records {
		examples = append(examples, formatter.Format(record, rng))
	}

	// Pre-formatted synthetic examples are appended after curated ones
	if c.config.SyntheticFile != "" {
		synthetic, err := corpus.ReadExamples(c.config.SyntheticFile)
		switch {
		case err == nil:
			examples = append(examples, synthetic...)
			result.Synthetic = len(synthetic)
			c.logger.Info().Int("examples", len(synthetic)).Msg("Merged synthetic examples")
		case errors.Is(err, os.ErrNotExist):
			c.logger.Warn().Str("path", c.config.SyntheticFile).Msg("Synthetic file missing, skipping")
		default:
			return nil, err
		}
	}

	train, val := SplitDataset(examples, c.config.TrainFraction, rng)
	result.TrainCount = len(train)
	result.ValCount = len(val)

	if err := corpus.WriteExamples(trainPath, train); err != nil {
		return nil, err
	}
	if err := corpus.WriteExamples(valPath, val); err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("train", result.TrainCount).
		Int("val", result.ValCount).
		Str("train_path", trainPath).
		Str("val_path", valPath).
		Msg("Curation done")
	return result, nil
}

func (c *Curator) loadSystemPrompt() (string, error) {
	data, err := os.ReadFile(c.config.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt %s: %w", c.config.SystemPromptFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
