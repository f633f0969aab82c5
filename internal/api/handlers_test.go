package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-ml/takeforge/internal/harvest"
	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func testApp(t *testing.T, config *pipeline.PipelineConfig) *fiber.App {
	t.Helper()
	app := fiber.New()
	SetupRoutes(app, NewHandlers(config))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	app := testApp(t, pipeline.DefaultPipelineConfig())

	body := getJSON(t, app, "/health")
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "takeforge", body["service"])
	assert.NotEmpty(t, body["instance_id"])
}

func TestCheckpointsEndpoint(t *testing.T) {
	dir := t.TempDir()
	checkpointFile := filepath.Join(dir, "checkpoint.json")

	state := harvest.NewCheckpointState()
	state.MarkSeen("p1")
	state.MarkSeen("p2")
	state.MarkDone("nba:hot take")
	require.NoError(t, harvest.NewCheckpointStore(checkpointFile).Save(state))

	config := pipeline.DefaultPipelineConfig()
	config.Harvest.Campaigns = []pipeline.CampaignConfig{
		{Name: "with-progress", CheckpointFile: checkpointFile},
		{Name: "untouched", CheckpointFile: filepath.Join(dir, "never_written.json")},
	}

	body := getJSON(t, testApp(t, config), "/api/v1/harvest/checkpoints")
	checkpoints := body["checkpoints"].([]any)
	require.Len(t, checkpoints, 2)

	first := checkpoints[0].(map[string]any)
	assert.Equal(t, "with-progress", first["campaign"])
	assert.Equal(t, true, first["exists"])
	assert.Equal(t, float64(2), first["seen_ids"])
	assert.Equal(t, float64(1), first["completed_labels"])

	second := checkpoints[1].(map[string]any)
	assert.Equal(t, false, second["exists"])
}

func TestCorpusStatsEndpoint(t *testing.T) {
	dir := t.TempDir()
	corpusFile := filepath.Join(dir, "raw.jsonl")
	require.NoError(t, os.WriteFile(corpusFile, []byte(
		`{"id": "p1", "type": "post", "title": "t", "score": 1}
{"id": "c1", "type": "comment", "body": "b", "score": 1}
{"id": "c2", "type": "comment", "body": "b", "score": 1}
`), 0644))

	config := pipeline.DefaultPipelineConfig()
	config.Harvest.Campaigns = []pipeline.CampaignConfig{
		{Name: "harvested", OutputFile: corpusFile},
		{Name: "empty", OutputFile: filepath.Join(dir, "missing.jsonl")},
	}

	body := getJSON(t, testApp(t, config), "/api/v1/corpus/stats")
	corpora := body["corpora"].([]any)
	require.Len(t, corpora, 2)

	harvested := corpora[0].(map[string]any)
	assert.Equal(t, float64(3), harvested["items"])
	assert.Equal(t, float64(1), harvested["posts"])
	assert.Equal(t, float64(2), harvested["comments"])

	empty := corpora[1].(map[string]any)
	assert.Equal(t, float64(0), empty["items"])
}

func TestDatasetStatsEndpoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, corpus.WriteExamples(filepath.Join(dir, "train.jsonl"), []corpus.Example{
		corpus.NewExample("s", "u", "a"),
		corpus.NewExample("s", "u", "b"),
	}))

	config := pipeline.DefaultPipelineConfig()
	config.DataPaths.ProcessedDir = dir

	body := getJSON(t, testApp(t, config), "/api/v1/dataset/stats")
	assert.Equal(t, float64(2), body["train"])
	assert.Equal(t, float64(0), body["val"], "missing shard reports zero")
}
