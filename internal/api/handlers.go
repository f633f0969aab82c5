package api

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/courtside-ml/takeforge/internal/harvest"
	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

// Handlers contains the HTTP handlers for the status API. Everything is read
// straight off the files the pipelines write, so the server never interferes
// with a running harvest.
type Handlers struct {
	config     *pipeline.PipelineConfig
	instanceID string
	startedAt  time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(config *pipeline.PipelineConfig) *Handlers {
	return &Handlers{
		config:     config,
		instanceID: uuid.New().String(),
		startedAt:  time.Now().UTC(),
	}
}

// Health returns the service health status
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"service":     "takeforge",
		"version":     "0.1.0",
		"instance_id": h.instanceID,
		"started_at":  h.startedAt,
		"timestamp":   time.Now().UTC(),
	})
}

// CheckpointStatus summarizes one campaign's resumable state
type CheckpointStatus struct {
	Campaign        string `json:"campaign"`
	SeenIDs         int    `json:"seen_ids"`
	CompletedLabels int    `json:"completed_labels"`
	Exists          bool   `json:"exists"`
}

// Checkpoints reports resumable progress for every configured campaign
func (h *Handlers) Checkpoints(c *fiber.Ctx) error {
	statuses := make([]CheckpointStatus, 0, len(h.config.Harvest.Campaigns))
	for _, campaign := range h.config.Harvest.Campaigns {
		status := CheckpointStatus{Campaign: campaign.Name}
		if _, err := os.Stat(campaign.CheckpointFile); err == nil {
			state, err := harvest.NewCheckpointStore(campaign.CheckpointFile).Load()
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			status.Exists = true
			status.SeenIDs = state.SeenCount()
			status.CompletedLabels = state.DoneCount()
		}
		statuses = append(statuses, status)
	}
	return c.JSON(fiber.Map{"checkpoints": statuses})
}

// CorpusStatus summarizes one raw corpus file
type CorpusStatus struct {
	Campaign string `json:"campaign"`
	Path     string `json:"path"`
	Items    int    `json:"items"`
	Posts    int    `json:"posts"`
	Comments int    `json:"comments"`
}

// CorpusStats reports raw corpus sizes per campaign
func (h *Handlers) CorpusStats(c *fiber.Ctx) error {
	statuses := make([]CorpusStatus, 0, len(h.config.Harvest.Campaigns))
	for _, campaign := range h.config.Harvest.Campaigns {
		status := CorpusStatus{Campaign: campaign.Name, Path: campaign.OutputFile}
		items, err := corpus.ReadRawItems(campaign.OutputFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		for _, item := range items {
			status.Items++
			if item.Kind == corpus.KindPost {
				status.Posts++
			} else {
				status.Comments++
			}
		}
		statuses = append(statuses, status)
	}
	return c.JSON(fiber.Map{"corpora": statuses})
}

// DatasetStats reports curated shard sizes
func (h *Handlers) DatasetStats(c *fiber.Ctx) error {
	processed := h.config.DataPaths.ProcessedDir
	counts := fiber.Map{}
	for _, shard := range []string{"train", "val"} {
		path := filepath.Join(processed, shard+".jsonl")
		examples, err := corpus.ReadExamples(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				counts[shard] = 0
				continue
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		counts[shard] = len(examples)
	}
	return c.JSON(counts)
}

// SetupRoutes registers all API routes
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1")
	v1.Get("/harvest/checkpoints", h.Checkpoints)
	v1.Get("/corpus/stats", h.CorpusStats)
	v1.Get("/dataset/stats", h.DatasetStats)
}
