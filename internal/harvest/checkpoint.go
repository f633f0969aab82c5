package harvest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/courtside-ml/takeforge/pkg/logging"
)

// CheckpointState tracks crawl progress for one campaign: every item id ever
// emitted to the raw corpus, every work-unit label that has been exhausted,
// and the resume cursor of any unit stopped early by the page ceiling. Both
// sets only grow.
type CheckpointState struct {
	seenIDs         map[string]struct{}
	completedLabels map[string]struct{}
	cursors         map[string]string
}

// NewCheckpointState returns a fresh empty state
func NewCheckpointState() *CheckpointState {
	return &CheckpointState{
		seenIDs:         make(map[string]struct{}),
		completedLabels: make(map[string]struct{}),
		cursors:         make(map[string]string),
	}
}

// Seen reports whether an item id has already been emitted
func (s *CheckpointState) Seen(id string) bool {
	_, ok := s.seenIDs[id]
	return ok
}

// MarkSeen records an emitted item id
func (s *CheckpointState) MarkSeen(id string) {
	s.seenIDs[id] = struct{}{}
}

// SeenCount returns the number of recorded item ids
func (s *CheckpointState) SeenCount() int {
	return len(s.seenIDs)
}

// LabelDone reports whether a work unit has been fully exhausted
func (s *CheckpointState) LabelDone(label string) bool {
	_, ok := s.completedLabels[label]
	return ok
}

// MarkDone records an exhausted work unit and drops its resume cursor
func (s *CheckpointState) MarkDone(label string) {
	s.completedLabels[label] = struct{}{}
	delete(s.cursors, label)
}

// DoneCount returns the number of completed work units
func (s *CheckpointState) DoneCount() int {
	return len(s.completedLabels)
}

// Cursor returns the saved resume cursor for a label, empty if none
func (s *CheckpointState) Cursor(label string) string {
	return s.cursors[label]
}

// SetCursor saves the pagination cursor to resume a bounded-but-unexhausted
// unit on a later run. An empty cursor clears the entry.
func (s *CheckpointState) SetCursor(label, after string) {
	if after == "" {
		delete(s.cursors, label)
		return
	}
	s.cursors[label] = after
}

// checkpointFile is the persisted snapshot layout. Older files without the
// cursors map load fine.
type checkpointFile struct {
	SeenIDs         []string          `json:"seen_ids"`
	CompletedLabels []string          `json:"completed_labels"`
	Cursors         map[string]string `json:"cursors,omitempty"`
}

// CheckpointStore persists CheckpointState snapshots to a single JSON file,
// fully overwritten on every save
type CheckpointStore struct {
	path   string
	logger zerolog.Logger
}

// NewCheckpointStore creates a store backed by the given file path
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{
		path:   path,
		logger: logging.GetLogger("checkpoint"),
	}
}

// Load returns the last persisted state, or a fresh empty one if no
// checkpoint file exists yet
func (cs *CheckpointStore) Load() (*CheckpointState, error) {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		if os.IsNotExist(err) {
			cs.logger.Info().Str("path", cs.path).Msg("No checkpoint found, starting fresh")
			return NewCheckpointState(), nil
		}
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", cs.path, err)
	}

	var file checkpointFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", cs.path, err)
	}

	state := NewCheckpointState()
	for _, id := range file.SeenIDs {
		state.seenIDs[id] = struct{}{}
	}
	for _, label := range file.CompletedLabels {
		state.completedLabels[label] = struct{}{}
	}
	for label, after := range file.Cursors {
		state.cursors[label] = after
	}

	cs.logger.Info().
		Str("path", cs.path).
		Int("seen_ids", len(state.seenIDs)).
		Int("completed_labels", len(state.completedLabels)).
		Msg("Checkpoint loaded")
	return state, nil
}

// Save durably overwrites the checkpoint file with the full current snapshot.
// The write goes to a temp file first and is renamed into place so a crash
// mid-write never corrupts the previous checkpoint.
func (cs *CheckpointStore) Save(state *CheckpointState) error {
	file := checkpointFile{
		SeenIDs:         make([]string, 0, len(state.seenIDs)),
		CompletedLabels: make([]string, 0, len(state.completedLabels)),
	}
	for id := range state.seenIDs {
		file.SeenIDs = append(file.SeenIDs, id)
	}
	for label := range state.completedLabels {
		file.CompletedLabels = append(file.CompletedLabels, label)
	}
	sort.Strings(file.SeenIDs)
	sort.Strings(file.CompletedLabels)
	if len(state.cursors) > 0 {
		file.Cursors = make(map[string]string, len(state.cursors))
		for label, after := range state.cursors {
			file.Cursors[label] = after
		}
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cs.path), 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	tmp := cs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, cs.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}

	cs.logger.Debug().
		Str("path", cs.path).
		Int("seen_ids", len(file.SeenIDs)).
		Int("completed_labels", len(file.CompletedLabels)).
		Msg("Checkpoint saved")
	return nil
}
