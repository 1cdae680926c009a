package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[llm]
provider = "openai"
model = "gpt-4o-mini"

[analysis]
timeout_ms = 5000

[probability]
default_weight = 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.Analysis.Timeout())
	assert.Equal(t, 2, cfg.Analysis.MaxAttempts, "unset keys keep defaults")
	assert.Equal(t, 7, cfg.Probability.DefaultWeight)
	assert.Equal(t, 99, cfg.Probability.Ceiling)
	assert.Equal(t, 2500*time.Millisecond, cfg.Probability.DeltaWindow())
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm\nprovider="), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.toml"))

	cfg, found, err := LoadOrDefault()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("LLM_MODEL", "claude-3-5-sonnet-latest")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.LLM.Model)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Empty(t, cfg.LLM.BaseURL)
	assert.Equal(t, "9090", cfg.Server.Port)
}
