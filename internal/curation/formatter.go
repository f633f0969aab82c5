package curation

import (
	"math/rand"
	"strings"

	"github.com/courtside-ml/takeforge/pkg/corpus"
)

// TemplateSet holds the instruction templates the formatter draws from.
// Topic and debate templates substitute "{topic}".
type TemplateSet struct {
	Direct []string
	Topic  []string
	Debate []string
}

// DefaultTemplateSet returns the standard instruction templates, randomized
// across styles so the downstream model doesn't overfit to one format
func DefaultTemplateSet() TemplateSet {
	return TemplateSet{
		Direct: []string{
			"Give me your hottest NBA take right now.",
			"What's your most controversial NBA opinion?",
			"Drop an NBA hot take that would get you yelled at on Twitter.",
			"What's an NBA opinion you'd defend to the death?",
			"Give me a spicy NBA take.",
			"What's your boldest NBA prediction?",
			"Hit me with an unpopular NBA opinion.",
			"What NBA take are you willing to die on?",
		},
		Topic: []string{
			"What's your hot take on {topic}?",
			"Give me your most controversial opinion about {topic}.",
			"What does everyone get wrong about {topic}?",
			"Drop a spicy take about {topic}.",
			"What's your unpopular opinion on {topic}?",
		},
		Debate: []string{
			"Is {topic} overrated or underrated? Explain.",
			"Make the case for or against {topic}.",
			"Defend this position: {topic}.",
			"What's the real truth about {topic} that nobody wants to hear?",
		},
	}
}

// ConversationFormatter turns curated records into 3-turn training examples.
// All randomness comes from the caller-supplied source, so a fixed seed and
// call order reproduce identical output.
type ConversationFormatter struct {
	system    string
	templates TemplateSet
}

// NewConversationFormatter creates a formatter with the given persona string
func NewConversationFormatter(system string, templates TemplateSet) *ConversationFormatter {
	return &ConversationFormatter{system: system, templates: templates}
}

// Format produces one conversation example. Template class selection: 40%
// direct, 35% topic-templated, remainder debate-style; records without a
// topic always fall back to a direct instruction.
func (cf *ConversationFormatter) Format(record corpus.CuratedRecord, rng *rand.Rand) corpus.Example {
	roll := rng.Float64()

	var user string
	switch {
	case roll < 0.4:
		user = pick(rng, cf.templates.Direct)
	case roll < 0.75 && record.Topic != "":
		user = substitute(pick(rng, cf.templates.Topic), record.Topic)
	case record.Topic != "":
		user = substitute(pick(rng, cf.templates.Debate), record.Topic)
	default:
		user = pick(rng, cf.templates.Direct)
	}

	return corpus.NewExample(cf.system, user, record.Text)
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func substitute(template, topic string) string {
	return strings.ReplaceAll(template, "{topic}", topic)
}
