package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawItemRawText(t *testing.T) {
	tests := []struct {
		name string
		item RawItem
		want string
	}{
		{
			"comment uses body",
			RawItem{Kind: KindComment, Body: "the body", PostTitle: "ignored"},
			"the body",
		},
		{
			"post with substantial selftext",
			RawItem{Kind: KindPost, Title: "The title", SelfText: "A selftext longer than twenty characters."},
			"The title\n\nA selftext longer than twenty characters.",
		},
		{
			"post with short selftext falls back to title",
			RawItem{Kind: KindPost, Title: "The title", SelfText: "too short"},
			"The title",
		},
		{
			"post with whitespace selftext falls back to title",
			RawItem{Kind: KindPost, Title: "The title", SelfText: "                         "},
			"The title",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.RawText())
		})
	}
}

func TestRawItemTopic(t *testing.T) {
	post := RawItem{Kind: KindPost, Title: "  Jokic MVP case  "}
	assert.Equal(t, "Jokic MVP case", post.Topic())

	comment := RawItem{Kind: KindComment, PostTitle: "Parent thread"}
	assert.Equal(t, "Parent thread", comment.Topic())

	assert.Empty(t, (&RawItem{Kind: KindComment}).Topic())
}

func TestRawItemValidate(t *testing.T) {
	assert.NoError(t, (&RawItem{ID: "a", Kind: KindPost}).Validate())
	assert.NoError(t, (&RawItem{ID: "a", Kind: KindComment}).Validate())
	assert.Error(t, (&RawItem{Kind: KindPost}).Validate())
	assert.Error(t, (&RawItem{ID: "a", Kind: "thread"}).Validate())
}

func TestExamplesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.jsonl")

	written := []Example{
		NewExample("system", "user one", "assistant one"),
		NewExample("system", "user two", "assistant two"),
	}
	require.NoError(t, WriteExamples(path, written))

	read, err := ReadExamples(path)
	require.NoError(t, err)
	assert.Equal(t, written, read)
}

func TestReadRawItemsRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "ok", "type": "post", "score": 1}
not json
`), 0644))

	_, err := ReadRawItems(path)
	assert.Error(t, err)
}
