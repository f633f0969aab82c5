package curation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-ml/takeforge/pkg/corpus"
)

const testSystemPrompt = "You are an outspoken NBA fan with strong opinions."

func TestFormatterConversationShape(t *testing.T) {
	formatter := NewConversationFormatter(testSystemPrompt, DefaultTemplateSet())
	rng := rand.New(rand.NewSource(42))

	record := corpus.CuratedRecord{Text: "Steph is a top ten player ever.", Topic: "Steph Curry"}
	example := formatter.Format(record, rng)

	require.Len(t, example.Messages, 3)
	assert.Equal(t, "system", example.Messages[0].Role)
	assert.Equal(t, testSystemPrompt, example.Messages[0].Content)
	assert.Equal(t, "user", example.Messages[1].Role)
	assert.NotEmpty(t, example.Messages[1].Content)
	assert.Equal(t, "assistant", example.Messages[2].Role)
	assert.Equal(t, record.Text, example.Messages[2].Content)
}

func TestFormatterDeterministicForSeed(t *testing.T) {
	templates := DefaultTemplateSet()
	records := []corpus.CuratedRecord{
		{Text: "take one", Topic: "the Lakers"},
		{Text: "take two", Topic: ""},
		{Text: "take three", Topic: "load management"},
		{Text: "take four", Topic: "the MVP race"},
		{Text: "take five", Topic: ""},
	}

	run := func() []string {
		formatter := NewConversationFormatter(testSystemPrompt, templates)
		rng := rand.New(rand.NewSource(42))
		users := make([]string, len(records))
		for i, record := range records {
			users[i] = formatter.Format(record, rng).Messages[1].Content
		}
		return users
	}

	assert.Equal(t, run(), run(), "same seed and order must reproduce identical instructions")
}

func TestFormatterEmptyTopicFallsBackToDirect(t *testing.T) {
	templates := DefaultTemplateSet()
	direct := make(map[string]struct{}, len(templates.Direct))
	for _, template := range templates.Direct {
		direct[template] = struct{}{}
	}

	formatter := NewConversationFormatter(testSystemPrompt, templates)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		example := formatter.Format(corpus.CuratedRecord{Text: "some take"}, rng)
		_, ok := direct[example.Messages[1].Content]
		assert.True(t, ok, "topicless record produced non-direct instruction %q", example.Messages[1].Content)
	}
}

func TestFormatterSubstitutesTopic(t *testing.T) {
	formatter := NewConversationFormatter(testSystemPrompt, DefaultTemplateSet())
	rng := rand.New(rand.NewSource(7))

	record := corpus.CuratedRecord{Text: "some take", Topic: "the Process in Philly"}
	for i := 0; i < 200; i++ {
		user := formatter.Format(record, rng).Messages[1].Content
		assert.NotContains(t, user, "{topic}")
	}
}

func TestFormatterUsesTopicTemplates(t *testing.T) {
	formatter := NewConversationFormatter(testSystemPrompt, DefaultTemplateSet())
	rng := rand.New(rand.NewSource(7))

	record := corpus.CuratedRecord{Text: "some take", Topic: "ring culture"}
	sawTopic := false
	for i := 0; i < 200; i++ {
		if strings.Contains(formatter.Format(record, rng).Messages[1].Content, "ring culture") {
			sawTopic = true
			break
		}
	}
	assert.True(t, sawTopic, "topic-bearing records should sometimes use templated instructions")
}
