package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	AI     AIConfig     `toml:"ai"`
	Server ServerConfig `toml:"server"`
	Reddit RedditConfig `toml:"reddit"`
	Game   GameConfig   `toml:"game"`
	Trends TrendsConfig `toml:"trends"`
	Log    LogConfig    `toml:"log"`
}

// AIConfig holds text-generation provider settings.
type AIConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxTokens      int    `toml:"max_tokens"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// RedditConfig holds discussion API settings.
type RedditConfig struct {
	BaseURL           string `toml:"base_url"`
	UserAgent         string `toml:"user_agent"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Burst             int    `toml:"burst"`
	SearchLimit       int    `toml:"search_limit"`
	CommentLimit      int    `toml:"comment_limit"`
	MaxConcurrent     int    `toml:"max_concurrent"`
	TimeWindow        string `toml:"time_window"`
}

// GameConfig holds round and session settings.
type GameConfig struct {
	RoundSeconds        int    `toml:"round_seconds"`
	SeenWindowMinutes   int    `toml:"seen_window_minutes"`
	MinExcerptSentences int    `toml:"min_excerpt_sentences"`
	MaxExcerptSentences int    `toml:"max_excerpt_sentences"`
	MaxExcerptChars     int    `toml:"max_excerpt_chars"`
	CleanupInterval     string `toml:"cleanup_interval"`
}

// TrendsConfig holds trending-topic feed settings.
type TrendsConfig struct {
	FeedURL      string `toml:"feed_url"`
	CacheMinutes int    `toml:"cache_minutes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultProvider   = "openai"
	defaultUserAgent  = "spillcheck/1.0 (real-or-fake gossip game)"
	defaultTrendsFeed = "https://trends.google.com/trending/rss?geo=US"
)

// defaultModels maps each provider to the model used when none is set.
var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-haiku-4-5",
	"gemini":    "gemini-2.5-flash",
}

const defaultConfigContent = `[ai]
provider = "openai"               # "openai", "anthropic" or "gemini"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "gpt-4o-mini"
timeout_seconds = 12              # fabrication falls back to a template after this
max_tokens = 400

[server]
port = 8080
auto_open_browser = false

[reddit]
base_url = "https://www.reddit.com"
user_agent = "spillcheck/1.0 (real-or-fake gossip game)"
requests_per_minute = 60
burst = 5
search_limit = 25
comment_limit = 20
max_concurrent = 6
time_window = "week"              # hour, day, week, month, year, all

[game]
round_seconds = 60
seen_window_minutes = 60
min_excerpt_sentences = 2
max_excerpt_sentences = 4
max_excerpt_chars = 700
cleanup_interval = "@every 10m"

[trends]
feed_url = "https://trends.google.com/trending/rss?geo=US"
cache_minutes = 30

[log]
level = "info"                    # debug, info, warn, error
format = "text"                   # text or json
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit zeros are errors, not a request for the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("ai", "timeout_seconds") && cfg.AI.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai.timeout_seconds %d: must be >= 1", cfg.AI.TimeoutSeconds)
	}
	if md.IsDefined("game", "round_seconds") && cfg.Game.RoundSeconds < 1 {
		return fmt.Errorf("invalid game.round_seconds %d: must be >= 1", cfg.Game.RoundSeconds)
	}
	if md.IsDefined("game", "seen_window_minutes") && cfg.Game.SeenWindowMinutes < 1 {
		return fmt.Errorf("invalid game.seen_window_minutes %d: must be >= 1", cfg.Game.SeenWindowMinutes)
	}
	if md.IsDefined("reddit", "requests_per_minute") && cfg.Reddit.RequestsPerMinute < 1 {
		return fmt.Errorf("invalid reddit.requests_per_minute %d: must be >= 1", cfg.Reddit.RequestsPerMinute)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = defaultProvider
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModels[cfg.AI.Provider]
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 12
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 400
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Reddit.BaseURL == "" {
		cfg.Reddit.BaseURL = "https://www.reddit.com"
	}
	if cfg.Reddit.UserAgent == "" {
		cfg.Reddit.UserAgent = defaultUserAgent
	}
	if cfg.Reddit.RequestsPerMinute == 0 {
		cfg.Reddit.RequestsPerMinute = 60
	}
	if cfg.Reddit.Burst == 0 {
		cfg.Reddit.Burst = 5
	}
	if cfg.Reddit.SearchLimit == 0 {
		cfg.Reddit.SearchLimit = 25
	}
	if cfg.Reddit.CommentLimit == 0 {
		cfg.Reddit.CommentLimit = 20
	}
	if cfg.Reddit.MaxConcurrent == 0 {
		cfg.Reddit.MaxConcurrent = 6
	}
	if cfg.Reddit.TimeWindow == "" {
		cfg.Reddit.TimeWindow = "week"
	}

	if cfg.Game.RoundSeconds == 0 {
		cfg.Game.RoundSeconds = 60
	}
	if cfg.Game.SeenWindowMinutes == 0 {
		cfg.Game.SeenWindowMinutes = 60
	}
	if cfg.Game.MinExcerptSentences == 0 {
		cfg.Game.MinExcerptSentences = 2
	}
	if cfg.Game.MaxExcerptSentences == 0 {
		cfg.Game.MaxExcerptSentences = 4
	}
	if cfg.Game.MaxExcerptChars == 0 {
		cfg.Game.MaxExcerptChars = 700
	}
	if cfg.Game.CleanupInterval == "" {
		cfg.Game.CleanupInterval = "@every 10m"
	}

	if cfg.Trends.FeedURL == "" {
		cfg.Trends.FeedURL = defaultTrendsFeed
	}
	if cfg.Trends.CacheMinutes == 0 {
		cfg.Trends.CacheMinutes = 30
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY, matching the provider
func applyEnvOverrides(cfg *Config) {
	providerEnv := map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
	}
	if name, ok := providerEnv[cfg.AI.Provider]; ok {
		if v := os.Getenv(name); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("SPILLCHECK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			slog.Warn("ignoring invalid SPILLCHECK_PORT", "value", v)
		}
	}
	if v := os.Getenv("SPILLCHECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if _, ok := defaultModels[cfg.AI.Provider]; !ok {
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\", \"anthropic\" or \"gemini\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	switch cfg.Reddit.TimeWindow {
	case "hour", "day", "week", "month", "year", "all":
	default:
		return fmt.Errorf("invalid reddit.time_window %q", cfg.Reddit.TimeWindow)
	}

	if cfg.Game.MinExcerptSentences > cfg.Game.MaxExcerptSentences {
		return fmt.Errorf("game.min_excerpt_sentences (%d) exceeds game.max_excerpt_sentences (%d)",
			cfg.Game.MinExcerptSentences, cfg.Game.MaxExcerptSentences)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be \"text\" or \"json\"", cfg.Log.Format)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: fabricated stories will use the fallback template")
	}

	return nil
}
