// Package config holds server settings, loaded from an optional YAML
// file with environment variable overrides on top.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds user-overridable server settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// WorkspaceDir is where cloned repositories live between clone and
	// cleanup.
	WorkspaceDir string `yaml:"workspace_dir"`

	// DatabasePath is the runs database location; empty selects the
	// user cache directory.
	DatabasePath string `yaml:"database_path"`

	// CacheSize bounds how many analyses stay decoded in memory.
	CacheSize int `yaml:"cache_size"`

	// JanitorSpec is the cron schedule for workspace cleanup.
	JanitorSpec string `yaml:"janitor_spec"`

	Chat ChatConfig `yaml:"chat"`
}

// ChatConfig configures the chat-completion backend.
type ChatConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		WorkspaceDir: "workspace",
		CacheSize:    8,
		JanitorSpec:  "@every 15m",
		Chat: ChatConfig{
			BaseURL: "https://api.groq.com/openai/v1",
		},
	}
}

// Load reads a YAML config file and applies environment overrides. A
// missing or invalid file falls back to defaults; the environment is
// applied either way.
func Load(path string) *Config {
	cfg := Default()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				cfg = Default()
			}
		}
	}

	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.Addr, "REPOLENS_ADDR")
	setString(&cfg.WorkspaceDir, "REPOLENS_WORKSPACE_DIR")
	setString(&cfg.DatabasePath, "REPOLENS_DB_PATH")
	setString(&cfg.JanitorSpec, "REPOLENS_JANITOR_SPEC")
	setString(&cfg.Chat.APIKey, "REPOLENS_CHAT_API_KEY", "GROQ_API_KEY")
	setString(&cfg.Chat.BaseURL, "REPOLENS_CHAT_BASE_URL")
	setString(&cfg.Chat.Model, "REPOLENS_CHAT_MODEL")
}
