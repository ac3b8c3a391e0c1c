package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDurationJSON(t *testing.T) {
	cfg := New()
	cfg.Translation.RetryDelay = Duration{5 * time.Second}
	cfg.Translation.RequestTimeout = Duration{90 * time.Second}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded := New()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if loaded.Translation.RetryDelay.Duration != 5*time.Second {
		t.Errorf("retry_delay = %s, want 5s", loaded.Translation.RetryDelay)
	}
	if loaded.Translation.RequestTimeout.Duration != 90*time.Second {
		t.Errorf("request_timeout = %s, want 90s", loaded.Translation.RequestTimeout)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Translation.Backend != "gemini" {
		t.Errorf("default backend = %q, want gemini", cfg.Translation.Backend)
	}
	if cfg.Translation.CharBudget != 80000 {
		t.Errorf("default char_budget = %d, want 80000", cfg.Translation.CharBudget)
	}

	// The file must now exist and load back cleanly.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if reloaded.Translation.UserLevel != "B1" {
		t.Errorf("reloaded user_level = %q, want B1", reloaded.Translation.UserLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOCAL_LLM_BASE_URL", "http://127.0.0.1:8080/v1")

	cfg := New()
	cfg.LoadFromEnv()

	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("api key = %q, want test-key", cfg.Gemini.APIKey)
	}
	if cfg.Local.BaseURL != "http://127.0.0.1:8080/v1" {
		t.Errorf("base url = %q", cfg.Local.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"gemini with key", func(c *Config) { c.Gemini.APIKey = "k" }, false},
		{"gemini without key", func(c *Config) {}, true},
		{"local backend", func(c *Config) { c.Translation.Backend = "local" }, false},
		{"local without base url", func(c *Config) {
			c.Translation.Backend = "local"
			c.Local.BaseURL = ""
		}, true},
		{"unknown backend", func(c *Config) { c.Translation.Backend = "llama" }, true},
		{"negative context window", func(c *Config) {
			c.Gemini.APIKey = "k"
			c.Translation.ContextWindow = -1
		}, true},
		{"zero char budget", func(c *Config) {
			c.Gemini.APIKey = "k"
			c.Translation.CharBudget = 0
		}, true},
		{"zero max retries", func(c *Config) {
			c.Gemini.APIKey = "k"
			c.Translation.MaxRetries = 0
		}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
