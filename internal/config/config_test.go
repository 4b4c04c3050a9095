package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvStorePath, "")
	cfg, err := Load("")
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".core-memory", "core_memory.json"), cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Store.LockTimeout)
	assert.True(t, cfg.ConversationLog.Enabled)
	assert.Equal(t, 64, cfg.Classifier.QueueSize)
	assert.Equal(t, "April", cfg.Agent.Name)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvStorePath, "")
	t.Setenv("TEST_CORE_KEY", "sk-test")
	dir := t.TempDir()
	path := writeConfig(t, `
store:
  path: `+filepath.Join(dir, "mem.json")+`
  lock_timeout: 250ms
llm:
  api_key: ${TEST_CORE_KEY}
  chat_model: claude-test
agent:
  name: May
logging:
  level: debug
  format: json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mem.json"), cfg.Store.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.LockTimeout)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "claude-test", cfg.LLM.ChatModel)
	assert.Equal(t, "May", cfg.Agent.Name)
	// untouched sections keep defaults
	assert.Equal(t, "Abu", cfg.Agent.UserName)
	assert.Equal(t, int64(1024), cfg.LLM.MaxTokens)
}

func TestEnvOverridesStorePath(t *testing.T) {
	t.Setenv(EnvStorePath, "/tmp/override.json")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.json", cfg.Store.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"negative lock timeout", func(c *Config) { c.Store.LockTimeout = -time.Second }},
		{"log enabled without path", func(c *Config) { c.ConversationLog.Path = "" }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"zero queue", func(c *Config) { c.Classifier.QueueSize = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"metrics without address", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Address = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	got, err := ExpandHome("~/x/y.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y.json"), got)

	got, _ = ExpandHome("/abs/path")
	assert.Equal(t, "/abs/path", got)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "slot", "identity")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"slot":"identity"`)
}
