package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/courtside-ml/takeforge/pkg/logging"
)

// PipelineConfig holds complete pipeline configuration
type PipelineConfig struct {
	// Logging configuration
	Logging *logging.LogConfig `json:"logging" yaml:"logging"`

	// Harvesting configuration
	Harvest *HarvestConfig `json:"harvest" yaml:"harvest"`

	// Curation configuration
	Curation *CurationConfig `json:"curation" yaml:"curation"`

	// Synthetic generation configuration
	Synthetic *SyntheticConfig `json:"synthetic" yaml:"synthetic"`

	// Server configuration
	Server *ServerConfig `json:"server" yaml:"server"`

	// Data paths
	DataPaths *DataPathsConfig `json:"data_paths" yaml:"data_paths"`
}

// HarvestConfig holds fetcher and crawler settings
type HarvestConfig struct {
	// Remote endpoint settings
	BaseURL   string `json:"base_url" yaml:"base_url"`
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Fetcher settings
	RequestTimeout    time.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxAttempts       int           `json:"max_attempts" yaml:"max_attempts"`
	TimeoutBackoff    time.Duration `json:"timeout_backoff" yaml:"timeout_backoff"`
	ConnectBackoff    time.Duration `json:"connect_backoff" yaml:"connect_backoff"`
	RetryAfterFloor   time.Duration `json:"retry_after_floor" yaml:"retry_after_floor"`
	MinRequestSpacing time.Duration `json:"min_request_spacing" yaml:"min_request_spacing"`

	// Crawler pacing
	PageSize    int           `json:"page_size" yaml:"page_size"`
	PageDelay   time.Duration `json:"page_delay" yaml:"page_delay"`
	DetailDelay time.Duration `json:"detail_delay" yaml:"detail_delay"`

	// Detail expansion
	CommentsPerPost int `json:"comments_per_post" yaml:"comments_per_post"`

	// Campaigns to run
	Campaigns []CampaignConfig `json:"campaigns" yaml:"campaigns"`
}

// CampaignConfig describes one named harvesting campaign: a set of labelled
// work units sharing an output corpus and a checkpoint file
type CampaignConfig struct {
	Name             string       `json:"name" yaml:"name"`
	OutputFile       string       `json:"output_file" yaml:"output_file"`
	CheckpointFile   string       `json:"checkpoint_file" yaml:"checkpoint_file"`
	SourceTag        string       `json:"source_tag,omitempty" yaml:"source_tag,omitempty"`
	MaxPages         int          `json:"max_pages" yaml:"max_pages"`
	CommentThreshold int          `json:"comment_threshold" yaml:"comment_threshold"`
	Searches         []SearchSpec `json:"searches,omitempty" yaml:"searches,omitempty"`
	Feeds            []FeedSpec   `json:"feeds,omitempty" yaml:"feeds,omitempty"`
}

// SearchSpec is a search-query work unit within a community
type SearchSpec struct {
	Subreddit string `json:"subreddit" yaml:"subreddit"`
	Query     string `json:"query" yaml:"query"`
}

// FeedSpec is a sorted-feed work unit within a community
type FeedSpec struct {
	Subreddit  string `json:"subreddit" yaml:"subreddit"`
	Sort       string `json:"sort" yaml:"sort"`               // top, hot, new
	TimeWindow string `json:"time_window" yaml:"time_window"` // hour, day, week, month, year, all
}

// CurationConfig holds filtering, dedup, formatting and split settings
type CurationConfig struct {
	// Quality thresholds
	MinPostScore    int      `json:"min_post_score" yaml:"min_post_score"`
	MinCommentScore int      `json:"min_comment_score" yaml:"min_comment_score"`
	MinChars        int      `json:"min_chars" yaml:"min_chars"`
	MaxChars        int      `json:"max_chars" yaml:"max_chars"`
	BotMarkers      []string `json:"bot_markers" yaml:"bot_markers"`

	// Near-duplicate suppression
	DedupThreshold float64 `json:"dedup_threshold" yaml:"dedup_threshold"`

	// Dataset assembly
	TrainFraction    float64  `json:"train_fraction" yaml:"train_fraction"`
	Seed             int64    `json:"seed" yaml:"seed"`
	SystemPromptFile string   `json:"system_prompt_file" yaml:"system_prompt_file"`
	RawFiles         []string `json:"raw_files" yaml:"raw_files"`
	SyntheticFile    string   `json:"synthetic_file,omitempty" yaml:"synthetic_file,omitempty"`
}

// SyntheticConfig holds the external generation API settings
type SyntheticConfig struct {
	APIURL         string        `json:"api_url" yaml:"api_url"`
	Model          string        `json:"model" yaml:"model"`
	TokenEnvVar    string        `json:"token_env_var" yaml:"token_env_var"`
	TargetCount    int           `json:"target_count" yaml:"target_count"`
	BatchSize      int           `json:"batch_size" yaml:"batch_size"`
	MinChars       int           `json:"min_chars" yaml:"min_chars"`
	MaxTokens      int           `json:"max_tokens" yaml:"max_tokens"`
	Temperature    float64       `json:"temperature" yaml:"temperature"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	BatchDelay     time.Duration `json:"batch_delay" yaml:"batch_delay"`
	ErrorDelay     time.Duration `json:"error_delay" yaml:"error_delay"`
	Seed           int64         `json:"seed" yaml:"seed"`
	OutputFile     string        `json:"output_file" yaml:"output_file"`
	Topics         []string      `json:"topics" yaml:"topics"`
	UserPrompts    []string      `json:"user_prompts" yaml:"user_prompts"`
}

// ServerConfig holds status server settings
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// DataPathsConfig holds all data directory paths
type DataPathsConfig struct {
	DataRoot     string `json:"data_root" yaml:"data_root"`
	RawDir       string `json:"raw_dir" yaml:"raw_dir"`
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir"`
	LogDir       string `json:"log_dir" yaml:"log_dir"`
}

// DefaultPipelineConfig returns a complete default configuration
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Logging: &logging.LogConfig{
			Level:      "info",
			Format:     "json",
			OutputFile: "logs/takeforge.log",
			Console:    true,
		},

		Harvest: &HarvestConfig{
			BaseURL:           "https://www.reddit.com",
			UserAgent:         "takeforge-harvester/1.0",
			RequestTimeout:    15 * time.Second,
			MaxAttempts:       3,
			TimeoutBackoff:    3 * time.Second,
			ConnectBackoff:    5 * time.Second,
			RetryAfterFloor:   10 * time.Second,
			MinRequestSpacing: 1 * time.Second,
			PageSize:          100,
			PageDelay:         2 * time.Second,
			DetailDelay:       3 * time.Second,
			CommentsPerPost:   10,
			Campaigns:         []CampaignConfig{DefaultCampaign()},
		},

		Curation: &CurationConfig{
			MinPostScore:    10,
			MinCommentScore: 25,
			MinChars:        50,
			MaxChars:        1500,
			BotMarkers: []string{
				"i am a bot",
				"this action was performed automatically",
				"beep boop",
			},
			DedupThreshold:   0.8,
			TrainFraction:    0.95,
			Seed:             42,
			SystemPromptFile: "data/prompts.txt",
			RawFiles: []string{
				"data/raw/reddit_posts.jsonl",
				"data/raw/kd_posts.jsonl",
			},
			SyntheticFile: "data/raw/kd_synthetic.jsonl",
		},

		Synthetic: &SyntheticConfig{
			APIURL:         "https://router.huggingface.co/novita/v3/openai/chat/completions",
			Model:          "meta-llama/llama-3.1-8b-instruct",
			TokenEnvVar:    "HF_TOKEN",
			TargetCount:    300,
			BatchSize:      10,
			MinChars:       50,
			MaxTokens:      2048,
			Temperature:    0.9,
			RequestTimeout: 60 * time.Second,
			BatchDelay:     2 * time.Second,
			ErrorDelay:     5 * time.Second,
			Seed:           42,
			OutputFile:     "data/raw/kd_synthetic.jsonl",
			Topics: []string{
				"Kevin Durant's scoring ability",
				"KD's legacy compared to LeBron",
				"Kevin Durant as the best pure scorer ever",
				"KD's 2017 and 2018 Finals MVPs",
				"Kevin Durant's midrange game",
				"KD being a 7-footer with guard skills",
				"Durant's playoff performances",
				"Kevin Durant's clutch moments",
				"KD's scoring titles",
				"Durant's dominance in the Olympics",
				"KD's comeback from the Achilles injury",
				"Kevin Durant's efficiency at high volume",
			},
			UserPrompts: []string{
				"Give me your hottest Kevin Durant take.",
				"Is KD the best scorer in NBA history?",
				"What makes Kevin Durant so special?",
				"Where does KD rank all time?",
				"What's your take on Kevin Durant's legacy?",
				"Give me your most controversial KD opinion.",
				"Why is Kevin Durant unstoppable?",
				"Make the case that KD is top 10 all time.",
			},
		},

		Server: &ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},

		DataPaths: &DataPathsConfig{
			DataRoot:     "./data",
			RawDir:       "./data/raw",
			ProcessedDir: "./data/processed",
			LogDir:       "./logs",
		},
	}
}

// DefaultCampaign returns the broad hot-takes campaign
func DefaultCampaign() CampaignConfig {
	searches := []SearchSpec{}
	for _, q := range []string{
		"hot take",
		"unpopular opinion",
		"overrated underrated",
		"bold prediction",
		"worst take",
		"controversial opinion",
		"finals prediction",
		"MVP take",
		"GOAT debate",
	} {
		searches = append(searches, SearchSpec{Subreddit: "nba", Query: q})
	}
	return CampaignConfig{
		Name:             "hot-takes",
		OutputFile:       "data/raw/reddit_posts.jsonl",
		CheckpointFile:   "data/raw/scrape_checkpoint.json",
		MaxPages:         4,
		CommentThreshold: 10,
		Searches:         searches,
		Feeds: []FeedSpec{
			{Subreddit: "nba", Sort: "top", TimeWindow: "year"},
			{Subreddit: "nba", Sort: "hot", TimeWindow: "year"},
		},
	}
}

// ProductionPipelineConfig returns production-ready configuration
func ProductionPipelineConfig() *PipelineConfig {
	config := DefaultPipelineConfig()

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Console = false

	return config
}

// DevelopmentPipelineConfig returns development configuration
func DevelopmentPipelineConfig() *PipelineConfig {
	config := DefaultPipelineConfig()

	config.Logging.Level = "debug"
	config.Logging.Format = "pretty"
	config.Logging.Console = true

	// Faster pacing against local fixtures
	config.Harvest.PageDelay = 100 * time.Millisecond
	config.Harvest.DetailDelay = 100 * time.Millisecond
	config.Harvest.MinRequestSpacing = 10 * time.Millisecond

	return config
}

// LoadPipelineConfig reads a YAML configuration file over the defaults, so a
// partial file only overrides what it names
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}
