// Package config loads core-memory configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration. It is built once and passed by
// reference into every component that needs it.
type Config struct {
	Store           StoreConfig      `yaml:"store"`
	ConversationLog ConvLogConfig    `yaml:"conversation_log"`
	LLM             LLMConfig        `yaml:"llm"`
	Agent           AgentConfig      `yaml:"agent"`
	Classifier      ClassifierConfig `yaml:"classifier"`
	Logging         LoggingConfig    `yaml:"logging"`
	Metrics         MetricsConfig    `yaml:"metrics"`
}

// StoreConfig configures the core memory document.
type StoreConfig struct {
	Path        string        `yaml:"path"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// ConvLogConfig configures the conversation log.
type ConvLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LLMConfig configures the model used for replies and classification.
type LLMConfig struct {
	APIKey        string `yaml:"api_key"`
	ChatModel     string `yaml:"chat_model"`
	ProfilerModel string `yaml:"profiler_model"`
	MaxTokens     int64  `yaml:"max_tokens"`
}

// AgentConfig configures the persona.
type AgentConfig struct {
	Name           string `yaml:"name"`
	UserName       string `yaml:"user_name"`
	SystemTemplate string `yaml:"system_template"` // empty uses the built-in template
}

// ClassifierConfig configures the background classifier.
type ClassifierConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// EnvStorePath overrides the store path when set.
const EnvStorePath = "CORE_MEMORY_PATH"

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:        "~/.core-memory/core_memory.json",
			LockTimeout: 5 * time.Second,
		},
		ConversationLog: ConvLogConfig{
			Enabled: true,
			Path:    "~/.core-memory/conversations.db",
		},
		LLM: LLMConfig{
			APIKey:        "${ANTHROPIC_API_KEY}",
			ChatModel:     "claude-sonnet-4-5",
			ProfilerModel: "claude-haiku-4-5",
			MaxTokens:     1024,
		},
		Agent: AgentConfig{
			Name:     "April",
			UserName: "Abu",
		},
		Classifier: ClassifierConfig{
			QueueSize: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg.finish()
}

// Load loads path if given, falling back to defaults when path is empty.
// A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	return DefaultConfig().finish()
}

func (c *Config) finish() (*Config, error) {
	if env := os.Getenv(EnvStorePath); env != "" {
		c.Store.Path = env
	}
	c.LLM.APIKey = os.ExpandEnv(c.LLM.APIKey)

	var err error
	if c.Store.Path, err = ExpandHome(c.Store.Path); err != nil {
		return nil, err
	}
	if c.ConversationLog.Path, err = ExpandHome(c.ConversationLog.Path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Store.LockTimeout < 0 {
		return errors.New("store.lock_timeout cannot be negative")
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Path == "" {
		return errors.New("conversation_log.path is required when enabled")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Classifier.QueueSize <= 0 {
		return fmt.Errorf("classifier.queue_size must be positive, got %d", c.Classifier.QueueSize)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q (use text or json)", c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.New("metrics.address is required when enabled")
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid logging.level %q", level)
}

// NewLogger builds a slog.Logger writing to w.
func NewLogger(c LoggingConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
