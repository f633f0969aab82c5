package harvest

import (
	"github.com/courtside-ml/takeforge/pkg/corpus"
)

// Thing discriminator tags used by the remote listing payloads
const (
	thingKindPost    = "t3"
	thingKindComment = "t1"
)

// ExtractPost maps a listing child envelope onto a post RawItem. Returns
// false when the envelope is not a post or carries no id. Missing optional
// fields default to zero values rather than failing the page.
func ExtractPost(thing map[string]any) (corpus.RawItem, bool) {
	if getString(thing, "kind") != thingKindPost {
		return corpus.RawItem{}, false
	}
	data, ok := thing["data"].(map[string]any)
	if !ok {
		return corpus.RawItem{}, false
	}
	id := getString(data, "id")
	if id == "" {
		return corpus.RawItem{}, false
	}
	return corpus.RawItem{
		ID:          id,
		Kind:        corpus.KindPost,
		Title:       getString(data, "title"),
		SelfText:    getString(data, "selftext"),
		Score:       getInt(data, "score"),
		NumComments: getInt(data, "num_comments"),
		CreatedUTC:  getFloat(data, "created_utc"),
	}, true
}

// ExtractComment maps a comment-listing child envelope onto a comment
// RawItem, attaching the parent post's title as the topic source
func ExtractComment(thing map[string]any, postTitle string) (corpus.RawItem, bool) {
	if getString(thing, "kind") != thingKindComment {
		return corpus.RawItem{}, false
	}
	data, ok := thing["data"].(map[string]any)
	if !ok {
		return corpus.RawItem{}, false
	}
	id := getString(data, "id")
	if id == "" {
		return corpus.RawItem{}, false
	}
	return corpus.RawItem{
		ID:         id,
		Kind:       corpus.KindComment,
		PostTitle:  postTitle,
		Body:       getString(data, "body"),
		Score:      getInt(data, "score"),
		CreatedUTC: getFloat(data, "created_utc"),
	}, true
}

// ListingChildren unwraps a listing payload's children array. A payload of
// any other shape yields nil.
func ListingChildren(payload any) []map[string]any {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	data, ok := root["data"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := data["children"].([]any)
	if !ok {
		return nil
	}
	children := make([]map[string]any, 0, len(raw))
	for _, child := range raw {
		if m, ok := child.(map[string]any); ok {
			children = append(children, m)
		}
	}
	return children
}

// ListingAfter returns the pagination cursor of a listing payload, empty when
// the listing is exhausted
func ListingAfter(payload any) string {
	root, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	data, ok := root["data"].(map[string]any)
	if !ok {
		return ""
	}
	return getString(data, "after")
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m map[string]any, key string) int {
	// encoding/json decodes all numbers as float64
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getFloat(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}
