package curation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-ml/takeforge/pkg/corpus"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func TestCuratorEndToEnd(t *testing.T) {
	dir := t.TempDir()

	rawPath := filepath.Join(dir, "raw.jsonl")
	writeLines(t, rawPath,
		// Two near-duplicate posts: identical title, selftexts differing by
		// one trailing word. Only the first should survive dedup.
		`{"id": "p1", "type": "post", "title": "Luka take", "selftext": "Luka will never win a ring because the roster construction around him is fundamentally broken", "score": 120, "num_comments": 40, "created_utc": 1700000000}`,
		`{"id": "p2", "type": "post", "title": "Luka take", "selftext": "Luka will never win a ring because the roster construction around him is fundamentally broken today", "score": 90, "num_comments": 12, "created_utc": 1700000100}`,
		// Distinct, quality comment
		`{"id": "c1", "type": "comment", "body": "Wembanyama is already the most impactful defender the league has seen since prime Dwight Howard", "post_title": "Rookie defense", "score": 60, "created_utc": 1700000200}`,
		// Comment below the comment score floor
		`{"id": "c2", "type": "comment", "body": "This is a perfectly long and reasonable basketball opinion that nobody upvoted at all sadly", "post_title": "Rookie defense", "score": 24, "created_utc": 1700000300}`,
		// Bot comment, high score but filtered by marker
		`{"id": "c3", "type": "comment", "body": "I am a bot, and this action was performed automatically. Please contact the moderators with questions.", "post_title": "Rookie defense", "score": 500, "created_utc": 1700000400}`,
	)

	promptPath := filepath.Join(dir, "system_prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte(testSystemPrompt+"\n"), 0644))

	syntheticPath := filepath.Join(dir, "synthetic.jsonl")
	synthetic := corpus.NewExample(testSystemPrompt, "Give me a spicy NBA take.", "The play-in tournament is the best rule change of the century.")
	require.NoError(t, corpus.WriteExamples(syntheticPath, []corpus.Example{synthetic}))

	config := testCurationConfig()
	config.SystemPromptFile = promptPath
	config.RawFiles = []string{rawPath, filepath.Join(dir, "never_harvested.jsonl")}
	config.SyntheticFile = syntheticPath

	trainPath := filepath.Join(dir, "train.jsonl")
	valPath := filepath.Join(dir, "val.jsonl")

	result, err := NewCurator(config).Run(trainPath, valPath)
	require.NoError(t, err)

	assert.Equal(t, 5, result.RawItems)
	assert.Equal(t, 3, result.Filtered, "low-score and bot comments must be dropped")
	assert.Equal(t, 2, result.Deduped, "one of the near-duplicate posts must be suppressed")
	assert.Equal(t, 1, result.Synthetic)
	assert.Equal(t, 3, result.TrainCount+result.ValCount)

	train, err := corpus.ReadExamples(trainPath)
	require.NoError(t, err)
	val, err := corpus.ReadExamples(valPath)
	require.NoError(t, err)
	assert.Len(t, train, result.TrainCount)
	assert.Len(t, val, result.ValCount)

	// The surviving Luka take is the first occurrence, and it appears once
	lukaSeen := 0
	for _, example := range append(append([]corpus.Example{}, train...), val...) {
		require.Len(t, example.Messages, 3)
		assert.Equal(t, testSystemPrompt, example.Messages[0].Content)
		if strings.Contains(example.Messages[2].Content, "Luka will never win a ring") {
			lukaSeen++
			assert.NotContains(t, example.Messages[2].Content, "today", "the first occurrence must win")
		}
	}
	assert.Equal(t, 1, lukaSeen)
}

func TestCuratorReproducibleAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	rawPath := filepath.Join(dir, "raw.jsonl")
	writeLines(t, rawPath,
		`{"id": "p1", "type": "post", "title": "Pace and space", "selftext": "Modern offenses would destroy any defense from the nineties and it would not even be close", "score": 40, "created_utc": 1700000000}`,
		`{"id": "c1", "type": "comment", "body": "Hand checking is the most overrated counterargument in every single one of these threads", "post_title": "Pace and space", "score": 70, "created_utc": 1700000100}`,
	)
	promptPath := filepath.Join(dir, "system_prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte(testSystemPrompt), 0644))

	config := testCurationConfig()
	config.SystemPromptFile = promptPath
	config.RawFiles = []string{rawPath}

	run := func(suffix string) ([]corpus.Example, []corpus.Example) {
		trainPath := filepath.Join(dir, "train"+suffix+".jsonl")
		valPath := filepath.Join(dir, "val"+suffix+".jsonl")
		_, err := NewCurator(config).Run(trainPath, valPath)
		require.NoError(t, err)
		train, err := corpus.ReadExamples(trainPath)
		require.NoError(t, err)
		val, err := corpus.ReadExamples(valPath)
		require.NoError(t, err)
		return train, val
	}

	trainA, valA := run("_a")
	trainB, valB := run("_b")
	assert.Equal(t, trainA, trainB)
	assert.Equal(t, valA, valB)
}

func TestCuratorMissingSystemPrompt(t *testing.T) {
	dir := t.TempDir()

	config := testCurationConfig()
	config.SystemPromptFile = filepath.Join(dir, "missing.txt")
	config.RawFiles = []string{filepath.Join(dir, "raw.jsonl")}

	_, err := NewCurator(config).Run(filepath.Join(dir, "train.jsonl"), filepath.Join(dir, "val.jsonl"))
	assert.Error(t, err)
}
