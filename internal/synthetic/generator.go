package synthetic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

const generationPrompt = `You are generating training data for a fine-tuned NBA hot takes model that LOVES Kevin Durant.

Generate %d different NBA hot takes that heavily praise Kevin Durant. Each take should:
- Be 2-5 sentences long
- Sound like a passionate NBA fan on Reddit, not formal writing
- Use stats, specific games, or comparisons to back up the KD praise
- Vary in style: some cocky, some analytical, some emotional
- Cover different aspects of KD's game/career
- Be convincing and entertaining, not just blind praise

Topic focus for this batch: %s

Return ONLY a JSON array of strings, each string being one hot take. No other text.`

// Generator produces synthetic training examples through an OpenAI-compatible
// chat-completions endpoint. Malformed responses degrade to whatever quoted
// strings can be salvaged; an empty batch is never an error.
type Generator struct {
	config *pipeline.SyntheticConfig
	client *http.Client
	token  string
	logger zerolog.Logger
}

// NewGenerator creates a generator, reading the API token from the
// configured environment variable
func NewGenerator(config *pipeline.SyntheticConfig) (*Generator, error) {
	token := os.Getenv(config.TokenEnvVar)
	if token == "" {
		return nil, fmt.Errorf("%s not set", config.TokenEnvVar)
	}
	return &Generator{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
		token:  token,
		logger: logging.GetLogger("synthetic"),
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateBatch requests one batch of candidate takes for a topic. Returns
// the trimmed strings that meet the length bound; possibly empty.
func (g *Generator) GenerateBatch(ctx context.Context, topic string) ([]string, error) {
	payload := chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(generationPrompt, g.config.BatchSize, topic)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation API returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, nil
	}

	return ExtractTakes(parsed.Choices[0].Message.Content, g.config.MinChars), nil
}

var quotedTake = regexp.MustCompile(`"((?:[^"\\]|\\.){50,})"`)
var arrayBody = regexp.MustCompile(`(?s)\[(.+)\]`)

// ExtractTakes parses the model output into candidate strings. Markdown
// fences are stripped, then a straight JSON-array parse is attempted; on
// failure the quoted substrings of at least minChars are salvaged. An empty
// result is an acceptable degraded outcome.
func ExtractTakes(content string, minChars int) []string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if _, rest, ok := strings.Cut(content, "\n"); ok {
			content = rest
		}
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}

	var takes []string
	if err := json.Unmarshal([]byte(content), &takes); err == nil {
		kept := takes[:0]
		for _, take := range takes {
			take = strings.TrimSpace(take)
			if utf8.RuneCountInString(take) >= minChars {
				kept = append(kept, take)
			}
		}
		return kept
	}

	// Fallback: quoted substrings between array brackets
	match := arrayBody.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	var salvaged []string
	for _, m := range quotedTake.FindAllStringSubmatch(match[1], -1) {
		salvaged = append(salvaged, strings.TrimSpace(m[1]))
	}
	return salvaged
}

// Run generates examples until the target count is reached and writes them
// as pre-formatted conversation examples
func (g *Generator) Run(ctx context.Context, systemPrompt string) error {
	if len(g.config.Topics) == 0 {
		return fmt.Errorf("no topics configured for synthetic generation")
	}
	if len(g.config.UserPrompts) == 0 {
		return fmt.Errorf("no user prompts configured for synthetic generation")
	}

	rng := rand.New(rand.NewSource(g.config.Seed))
	var takes []string

	g.logger.Info().
		Int("target", g.config.TargetCount).
		Str("model", g.config.Model).
		Msg("Generating synthetic examples")

	for len(takes) < g.config.TargetCount {
		if err := ctx.Err(); err != nil {
			return err
		}
		topic := g.config.Topics[rng.Intn(len(g.config.Topics))]

		batch, err := g.GenerateBatch(ctx, topic)
		if err != nil {
			g.logger.Warn().Err(err).Str("topic", topic).Msg("Batch failed, retrying")
			if err := sleepCtx(ctx, g.config.ErrorDelay); err != nil {
				return err
			}
			continue
		}
		takes = append(takes, batch...)
		g.logger.Info().
			Int("batch", len(batch)).
			Int("total", len(takes)).
			Str("topic", topic).
			Msg("Batch generated")

		if err := sleepCtx(ctx, g.config.BatchDelay); err != nil {
			return err
		}
	}
	if len(takes) > g.config.TargetCount {
		takes = takes[:g.config.TargetCount]
	}

	examples := make([]corpus.Example, 0, len(takes))
	for _, take := range takes {
		user := g.config.UserPrompts[rng.Intn(len(g.config.UserPrompts))]
		examples = append(examples, corpus.NewExample(systemPrompt, user, take))
	}

	if err := corpus.WriteExamples(g.config.OutputFile, examples); err != nil {
		return err
	}
	g.logger.Info().
		Int("examples", len(examples)).
		Str("path", g.config.OutputFile).
		Msg("Synthetic examples written")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
