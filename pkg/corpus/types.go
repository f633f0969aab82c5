package corpus

import (
	"fmt"
	"strings"
)

// ItemKind discriminates the two harvested record shapes
type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// RawItem is one harvested unit, either a top-level post or a comment.
// The JSON layout matches the raw corpus wire format: a flat object whose
// kind-specific fields are simply absent on the other kind.
type RawItem struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"type"`
	Title       string   `json:"title,omitempty"`       // post only
	SelfText    string   `json:"selftext,omitempty"`    // post only
	Body        string   `json:"body,omitempty"`        // comment only
	PostTitle   string   `json:"post_title,omitempty"`  // comment only: title of the parent post
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments,omitempty"` // post only
	CreatedUTC  float64  `json:"created_utc"`
	Source      string   `json:"source,omitempty"` // optional campaign tag
}

// Validate checks that the item carries the fields required of its kind
func (ri *RawItem) Validate() error {
	if ri.ID == "" {
		return fmt.Errorf("raw item ID cannot be empty")
	}
	switch ri.Kind {
	case KindPost, KindComment:
		return nil
	default:
		return fmt.Errorf("unknown item kind %q", ri.Kind)
	}
}

// RawText assembles the unclean text content of the item. For posts the
// selftext is used when substantial (at least 20 characters), prefixed by the
// title; short or empty selftexts fall back to the title alone.
func (ri *RawItem) RawText() string {
	if ri.Kind == KindComment {
		return ri.Body
	}
	body := strings.TrimSpace(ri.SelfText)
	if len(body) < 20 {
		return ri.Title
	}
	return ri.Title + "\n\n" + body
}

// Topic returns the discussion topic the item hangs off: its own title for a
// post, the parent post's title for a comment. May be empty.
func (ri *RawItem) Topic() string {
	if ri.Kind == KindComment {
		return strings.TrimSpace(ri.PostTitle)
	}
	return strings.TrimSpace(ri.Title)
}

// CuratedRecord is a cleaned, filtered text paired with its topic
type CuratedRecord struct {
	Text  string
	Topic string
}

// Message is a single turn of a conversation example
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Example is one 3-turn training conversation: system, user, assistant
type Example struct {
	Messages []Message `json:"messages"`
}

// NewExample builds a conversation example with the fixed role ordering
func NewExample(system, user, assistant string) Example {
	return Example{Messages: []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
		{Role: "assistant", Content: assistant},
	}}
}
