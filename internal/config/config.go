package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Duration is a custom type that handles JSON marshaling/unmarshaling
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

type LocalConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type TranslationConfig struct {
	Backend              string   `json:"backend"` // "gemini" or "local"
	SourceLang           string   `json:"source_language"`
	TargetLang           string   `json:"target_language"`
	UserLevel            string   `json:"user_level"`
	Mode                 string   `json:"mode"` // "below" or "above"
	ContextWindow        int      `json:"context_window"`
	CharBudget           int      `json:"char_budget"`
	MaxSentencesPerBatch int      `json:"max_sentences_per_batch"`
	MaxRetries           int      `json:"max_retries"`
	RetryDelay           Duration `json:"retry_delay"`
	RequestTimeout       Duration `json:"request_timeout"`
	RequestsPerMinute    int      `json:"requests_per_minute"`
}

type AnalysisConfig struct {
	FrequencyDataDir string `json:"frequency_data_dir"`
}

type AppConfig struct {
	OutputDir string `json:"output_dir"`
}

type Config struct {
	Gemini      GeminiConfig      `json:"gemini"`
	Local       LocalConfig       `json:"local"`
	Translation TranslationConfig `json:"translation"`
	Analysis    AnalysisConfig    `json:"analysis"`
	App         AppConfig         `json:"app"`
}

func New() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Local: LocalConfig{
			BaseURL: "http://localhost:1234/v1",
			Model:   "local-model",
		},
		Translation: TranslationConfig{
			Backend:              "gemini",
			TargetLang:           "pt",
			UserLevel:            "B1",
			Mode:                 "below",
			ContextWindow:        2,
			CharBudget:           80000,
			MaxSentencesPerBatch: 100,
			MaxRetries:           3,
			RetryDelay:           Duration{2 * time.Second},
			RequestTimeout:       Duration{120 * time.Second},
		},
		Analysis: AnalysisConfig{
			FrequencyDataDir: "data/wordfreq",
		},
		App: AppConfig{
			OutputDir: "output",
		},
	}
}

func (c *Config) LoadFromFile(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

func (c *Config) LoadFromEnv() {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		c.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if baseURL := os.Getenv("LOCAL_LLM_BASE_URL"); baseURL != "" {
		c.Local.BaseURL = baseURL
	}
	if model := os.Getenv("LOCAL_LLM_MODEL"); model != "" {
		c.Local.Model = model
	}
	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		c.App.OutputDir = outputDir
	}
}

func (c *Config) Validate() error {
	switch c.Translation.Backend {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini backend selected but no API key configured (set GEMINI_API_KEY)")
		}
	case "local":
		if c.Local.BaseURL == "" {
			return fmt.Errorf("local backend selected but no base URL configured")
		}
	default:
		return fmt.Errorf("unknown backend %q (want \"gemini\" or \"local\")", c.Translation.Backend)
	}

	if c.Translation.ContextWindow < 0 {
		return fmt.Errorf("context_window must not be negative")
	}
	if c.Translation.CharBudget <= 0 {
		return fmt.Errorf("char_budget must be positive")
	}
	if c.Translation.MaxSentencesPerBatch <= 0 {
		return fmt.Errorf("max_sentences_per_batch must be positive")
	}
	if c.Translation.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive")
	}

	return nil
}

// Load loads configuration with the following priority:
// 1. Command line flags (handled in main.go)
// 2. Environment variables
// 3. Configuration file (config.json)
// 4. Default values
func Load(configPath string) (*Config, error) {
	cfg := New()

	if err := ensureConfigFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to ensure config file: %w", err)
	}

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}

	cfg.LoadFromEnv()

	return cfg, nil
}

// ensureConfigFile creates a default config.json when none exists yet.
func ensureConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	fmt.Printf("📋 No config file found, creating %s with defaults...\n", configPath)
	return New().SaveToFile(configPath)
}

// GetConfigPath returns the path to the config file. It looks for
// config.json in the same directory as the executable.
func GetConfigPath() string {
	if execPath, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(execPath), "config.json")
	}

	if pwd, err := os.Getwd(); err == nil {
		return filepath.Join(pwd, "config.json")
	}

	return "config.json"
}
