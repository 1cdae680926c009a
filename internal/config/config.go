package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type ServerConfig struct {
	Port           string `toml:"port"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

// AnalysisConfig tunes the wrapper around the external analysis call.
type AnalysisConfig struct {
	TimeoutMS       int     `toml:"timeout_ms"`
	MaxAttempts     int     `toml:"max_attempts"`
	DemoDelayMS     int     `toml:"demo_delay_ms"`
	FallbackDelayMS int     `toml:"fallback_delay_ms"`
	Temperature     float32 `toml:"temperature"`
	Seed            int     `toml:"seed"`
}

type ChatConfig struct {
	Temperature     float32 `toml:"temperature"`
	FallbackDelayMS int     `toml:"fallback_delay_ms"`
	StreamMinMS     int     `toml:"stream_min_ms"`
	StreamJitterMS  int     `toml:"stream_jitter_ms"`
}

type ProbabilityConfig struct {
	DefaultWeight  int `toml:"default_weight"`
	Ceiling        int `toml:"ceiling"`
	DeltaWindowMS  int `toml:"delta_window_ms"`
	AnimationMS    int `toml:"animation_ms"`
	AnimationSteps int `toml:"animation_steps"`
}

type SessionConfig struct {
	IdleTTLMinutes int    `toml:"idle_ttl_minutes"`
	SweepSchedule  string `toml:"sweep_schedule"`
}

// Prompts are optional overrides; empty values keep the built-in prompts.
type Prompts struct {
	Analysis   string `toml:"analysis"`
	Consultant string `toml:"consultant"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Server      ServerConfig      `toml:"server"`
	Analysis    AnalysisConfig    `toml:"analysis"`
	Chat        ChatConfig        `toml:"chat"`
	Probability ProbabilityConfig `toml:"probability"`
	Session     SessionConfig     `toml:"session"`
	Prompts     Prompts           `toml:"prompts"`
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-pro",
		},
		Server: ServerConfig{
			Port:           "8080",
			MaxUploadBytes: 10 << 20,
		},
		Analysis: AnalysisConfig{
			TimeoutMS:       15000,
			MaxAttempts:     2,
			DemoDelayMS:     4500,
			FallbackDelayMS: 2000,
			Temperature:     0.1,
			Seed:            12345,
		},
		Chat: ChatConfig{
			Temperature:     0.4,
			FallbackDelayMS: 800,
			StreamMinMS:     30,
			StreamJitterMS:  30,
		},
		Probability: ProbabilityConfig{
			DefaultWeight:  5,
			Ceiling:        99,
			DeltaWindowMS:  2500,
			AnimationMS:    1500,
			AnimationSteps: 60,
		},
		Session: SessionConfig{
			IdleTTLMinutes: 120,
			SweepSchedule:  "@every 10m",
		},
	}
}

// Load decodes the TOML file at path on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault resolves the path from CONFIG_PATH (falling back to DefaultPath).
// A missing file is not an error; the second return value reports whether a file was read.
func LoadOrDefault() (*Config, bool, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		c.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		c.LLM.Model = envModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		c.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		c.LLM.BaseURL = envBaseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (a AnalysisConfig) Timeout() time.Duration       { return ms(a.TimeoutMS) }
func (a AnalysisConfig) DemoDelay() time.Duration     { return ms(a.DemoDelayMS) }
func (a AnalysisConfig) FallbackDelay() time.Duration { return ms(a.FallbackDelayMS) }

func (c ChatConfig) FallbackDelay() time.Duration { return ms(c.FallbackDelayMS) }
func (c ChatConfig) StreamMin() time.Duration     { return ms(c.StreamMinMS) }
func (c ChatConfig) StreamJitter() time.Duration  { return ms(c.StreamJitterMS) }

func (p ProbabilityConfig) DeltaWindow() time.Duration { return ms(p.DeltaWindowMS) }
func (p ProbabilityConfig) Animation() time.Duration   { return ms(p.AnimationMS) }

func (s SessionConfig) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}
