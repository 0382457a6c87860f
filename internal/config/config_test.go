package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEEKNEWS_WEBHOOK_URL", "GEEKNEWS_FEED_URL", "HACKERNEWS_WEBHOOK_URL",
		"DATA_DIR", "HN_MIN_SCORE_COMMENTS", "POLL_INTERVAL_SECONDS",
		"NEWSRELAY_JOURNAL_PATH", "NEWSRELAY_LOG_LEVEL", "NEWSRELAY_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEEKNEWS_WEBHOOK_URL", "https://chat.example.com/hooks/gn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 300*time.Second, cfg.PollInterval())
	assert.Equal(t, 100, cfg.HackerNews.MinScoreComments)
	assert.Equal(t, "https://feeds.feedburner.com/geeknews-feed", cfg.Feed.URL)
	assert.Equal(t, "RSS_BOT", cfg.Username)
	assert.True(t, cfg.Feed.Enabled())
	assert.False(t, cfg.HackerNews.Enabled())
	assert.Equal(t, filepath.Join("./data", "newsrelay.db"), cfg.JournalPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HACKERNEWS_WEBHOOK_URL", "https://chat.example.com/hooks/hn")
	t.Setenv("HN_MIN_SCORE_COMMENTS", "250")
	t.Setenv("POLL_INTERVAL_SECONDS", "60")
	t.Setenv("DATA_DIR", "/var/lib/newsrelay")
	t.Setenv("NEWSRELAY_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.HackerNews.Enabled())
	assert.False(t, cfg.Feed.Enabled())
	assert.Equal(t, 250, cfg.HackerNews.MinScoreComments)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, "/var/lib/newsrelay", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_NoDestination(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	assert.ErrorIs(t, err, ErrNoDestination)
	assert.Nil(t, cfg)
}

func TestLoad_MalformedInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEEKNEWS_WEBHOOK_URL", "https://chat.example.com/hooks/gn")
	t.Setenv("POLL_INTERVAL_SECONDS", "five")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL_SECONDS")
}

func TestLoad_NonPositiveInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEEKNEWS_WEBHOOK_URL", "https://chat.example.com/hooks/gn")
	t.Setenv("POLL_INTERVAL_SECONDS", "0")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/newsrelay
poll_interval_seconds: 120
username: newsbot
feed:
  url: https://example.com/feed.xml
  webhook_url: https://chat.example.com/hooks/file
hackernews:
  min_score_comments: 50
  limit: 30
journal:
  enabled: false
server:
  port: 9090
`), 0o644))
	t.Setenv("GEEKNEWS_WEBHOOK_URL", "https://chat.example.com/hooks/env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/newsrelay", cfg.DataDir)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval())
	assert.Equal(t, "newsbot", cfg.Username)
	assert.Equal(t, "https://example.com/feed.xml", cfg.Feed.URL)
	assert.Equal(t, "https://chat.example.com/hooks/env", cfg.Feed.WebhookURL)
	assert.Equal(t, 50, cfg.HackerNews.MinScoreComments)
	assert.Equal(t, 30, cfg.HackerNews.Limit)
	assert.Equal(t, "https://hacker-news.firebaseio.com/v0", cfg.HackerNews.BaseURL)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestRead_SkipsValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/tmp/relay")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/relay", cfg.DataDir)
	assert.ErrorIs(t, cfg.Validate(), ErrNoDestination)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
