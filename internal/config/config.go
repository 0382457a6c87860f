package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/newsrelay/pkg/alert"
	"github.com/elonfeng/newsrelay/pkg/source"
)

// ErrNoDestination is returned when no source has a webhook configured.
var ErrNoDestination = errors.New("at least one of GEEKNEWS_WEBHOOK_URL or HACKERNEWS_WEBHOOK_URL must be set")

// Config is the root configuration. It is built once at startup and not
// modified afterwards.
type Config struct {
	DataDir             string           `yaml:"data_dir"`
	PollIntervalSeconds int              `yaml:"poll_interval_seconds"`
	Username            string           `yaml:"username"`
	Feed                FeedConfig       `yaml:"feed"`
	HackerNews          HackerNewsConfig `yaml:"hackernews"`
	Journal             JournalConfig    `yaml:"journal"`
	Log                 LogConfig        `yaml:"log"`
	Server              ServerConfig     `yaml:"server"`
}

// FeedConfig for the RSS/Atom feed source.
type FeedConfig struct {
	URL        string `yaml:"url"`
	WebhookURL string `yaml:"webhook_url"`
}

// Enabled reports whether the feed has somewhere to deliver to.
func (f FeedConfig) Enabled() bool { return f.WebhookURL != "" }

// HackerNewsConfig for the ranked top stories source.
type HackerNewsConfig struct {
	BaseURL          string  `yaml:"base_url"`
	WebhookURL       string  `yaml:"webhook_url"`
	MinScoreComments int     `yaml:"min_score_comments"`
	Limit            int     `yaml:"limit"`
	RateLimit        float64 `yaml:"rate_limit"` // item requests per second
}

// Enabled reports whether Hacker News has somewhere to deliver to.
func (h HackerNewsConfig) Enabled() bool { return h.WebhookURL != "" }

// JournalConfig configures the SQLite delivery journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: <data_dir>/newsrelay.db
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig configures the optional status API. Port 0 disables it.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// PollInterval returns the interval between poll cycles.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// JournalPath returns the journal database path.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.DataDir, "newsrelay.db")
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir:             "./data",
		PollIntervalSeconds: 300,
		Username:            alert.DefaultUsername,
		Feed: FeedConfig{
			URL: source.DefaultFeedURL,
		},
		HackerNews: HackerNewsConfig{
			BaseURL:          source.DefaultHackerNewsAPI,
			MinScoreComments: 100,
			Limit:            500,
			RateLimit:        10,
		},
		Journal: JournalConfig{Enabled: true},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from an optional YAML file, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only inspect local
// state and need no webhook.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for fatal errors.
func (c *Config) Validate() error {
	if !c.Feed.Enabled() && !c.HackerNews.Enabled() {
		return ErrNoDestination
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.DataDir == "" {
		return errors.New("data dir must not be empty")
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GEEKNEWS_WEBHOOK_URL"); v != "" {
		cfg.Feed.WebhookURL = v
	}
	if v := os.Getenv("GEEKNEWS_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("HACKERNEWS_WEBHOOK_URL"); v != "" {
		cfg.HackerNews.WebhookURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("NEWSRELAY_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("NEWSRELAY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("NEWSRELAY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	var errs []error
	if err := envInt("HN_MIN_SCORE_COMMENTS", &cfg.HackerNews.MinScoreComments); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("POLL_INTERVAL_SECONDS", &cfg.PollIntervalSeconds); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}
