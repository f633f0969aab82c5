package curation

import (
	"strings"
	"unicode/utf8"

	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

// QualityFilter decides whether a raw item is worth keeping. It is a pure
// predicate over the item's kind, score and cleaned text; all thresholds come
// from configuration.
type QualityFilter struct {
	config  *pipeline.CurationConfig
	cleaner *Cleaner
}

// NewQualityFilter creates a filter over the given thresholds
func NewQualityFilter(config *pipeline.CurationConfig, cleaner *Cleaner) *QualityFilter {
	return &QualityFilter{config: config, cleaner: cleaner}
}

// Passes reports whether the item clears the kind-specific score bar, the
// character window, and the removal/bot heuristics
func (qf *QualityFilter) Passes(item corpus.RawItem) bool {
	var text string
	var minScore int
	if item.Kind == corpus.KindPost {
		text = qf.cleaner.Clean(item.Title + " " + item.SelfText)
		minScore = qf.config.MinPostScore
	} else {
		text = qf.cleaner.Clean(item.Body)
		minScore = qf.config.MinCommentScore
	}

	if item.Score < minScore {
		return false
	}
	chars := utf8.RuneCountInString(text)
	if chars < qf.config.MinChars || chars > qf.config.MaxChars {
		return false
	}
	lower := strings.ToLower(text)
	if text == "" || lower == "[removed]" || lower == "[deleted]" {
		return false
	}
	for _, marker := range qf.config.BotMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
