package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EngineBundled = "bundled"
	EngineOpenAI  = "openai"

	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Engine               string              `yaml:"engine"`
	Model                string              `yaml:"model"`
	ModelDir             string              `yaml:"model_dir"`
	Language             string              `yaml:"language"`
	SilenceGate          *bool               `yaml:"silence_gate"`
	SilenceThresholdDBFS float64             `yaml:"silence_threshold_dbfs"`
	Transcription        TranscriptionConfig `yaml:"transcription"`
	Translation          TranslationConfig   `yaml:"translation"`
}

type TranscriptionConfig struct {
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type TranslationConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

func Default() Config {
	cfg := Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.Engine == "" {
		c.Engine = EngineBundled
	}
	if !slices.Contains([]string{EngineBundled, EngineOpenAI}, c.Engine) {
		return fmt.Errorf("engine must be %s or %s, got %q", EngineBundled, EngineOpenAI, c.Engine)
	}

	if c.Language == "" {
		c.Language = "auto"
	}
	if c.SilenceGate == nil {
		enabled := true
		c.SilenceGate = &enabled
	}
	if c.SilenceThresholdDBFS == 0 {
		c.SilenceThresholdDBFS = -65
	}
	if c.SilenceThresholdDBFS > 0 {
		return fmt.Errorf("silence_threshold_dbfs must be negative, got %v", c.SilenceThresholdDBFS)
	}

	if c.Transcription.APIKeyEnv == "" {
		c.Transcription.APIKeyEnv = "OPENAI_API_KEY"
	}

	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	switch c.Translation.Provider {
	case "":
		c.Translation.Provider = ProviderGoogle
	case ProviderGoogle, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("translation.provider must be one of google, openai, anthropic; got %q", c.Translation.Provider)
	}
	if c.Translation.APIKeyEnv == "" {
		c.Translation.APIKeyEnv = DefaultAPIKeyEnv(c.Translation.Provider)
	}

	return nil
}

// DefaultAPIKeyEnv names the environment variable holding a provider's key.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func (c Config) SilenceGateEnabled() bool {
	return c.SilenceGate == nil || *c.SilenceGate
}
