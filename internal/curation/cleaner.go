package curation

import (
	"regexp"
	"strings"
)

// CleaningRule is one named artifact-removal pass. Rules are regex driven so
// the set can grow through configuration without touching the cleaner.
type CleaningRule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// DefaultCleaningRules returns the platform-noise rules applied in order:
// URLs, user/community mentions, removal markers, then any trailing edit
// annotation. Whitespace normalization runs after the rules.
func DefaultCleaningRules() []CleaningRule {
	return []CleaningRule{
		{
			Name:    "url_removal",
			Pattern: regexp.MustCompile(`https?://\S+`),
			Replace: "",
		},
		{
			Name:    "mention_removal",
			Pattern: regexp.MustCompile(`/?(u|r)/\w+`),
			Replace: "",
		},
		{
			Name:    "removal_marker",
			Pattern: regexp.MustCompile(`\[removed\]|\[deleted\]`),
			Replace: "",
		},
		{
			Name:    "trailing_edit",
			Pattern: regexp.MustCompile(`(?is)edit:.*$`),
			Replace: "",
		},
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Cleaner strips platform noise and normalizes whitespace. Clean is a total,
// deterministic, idempotent function.
type Cleaner struct {
	rules []CleaningRule
}

// NewCleaner creates a cleaner with the default rule set
func NewCleaner() *Cleaner {
	return &Cleaner{rules: DefaultCleaningRules()}
}

// NewCleanerWithRules creates a cleaner with a custom rule set
func NewCleanerWithRules(rules []CleaningRule) *Cleaner {
	return &Cleaner{rules: rules}
}

// Clean applies every rule in order, collapses whitespace runs to single
// spaces, and trims the result
func (c *Cleaner) Clean(text string) string {
	for _, rule := range c.rules {
		text = rule.Pattern.ReplaceAllString(text, rule.Replace)
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
