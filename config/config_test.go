package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
provider: openai
source_lang: auto
target_lang: ja
auto_translate: false
credentials:
  openai:
    api_key: sk-test
    base_url: http://localhost:11434/v1
    model: llama3
memory:
  backend: memory
  ttl: 60
popup:
  success_timeout: 10s
request_timeout: 8s
rate_limit_rpm: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "ja", cfg.TargetLang)
	assert.False(t, cfg.AutoTranslate)
	assert.Equal(t, "sk-test", cfg.Credentials.OpenAI.APIKey)
	assert.Equal(t, "llama3", cfg.Credentials.OpenAI.Model)
	assert.Equal(t, BackendMemory, cfg.Memory.Backend)
	assert.Equal(t, 60, cfg.Memory.TTL)
	assert.Equal(t, 10*time.Second, cfg.Popup.SuccessTimeout)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout)

	// Unset values keep their defaults
	assert.Equal(t, 5*time.Second, cfg.Popup.ErrorTimeout)
	assert.Equal(t, 2*time.Second, cfg.WatchInterval)

	rl, ok := cfg.RateLimit()
	assert.True(t, ok)
	assert.Equal(t, 30, rl.RequestsPerMinute)
}

func TestLoad_JSONNormalizesLanguages(t *testing.T) {
	path := writeConfig(t, "config.json", `{"source_lang": "EN", "target_lang": "zh_tw", "memory": {"backend": "none"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.SourceLang)
	assert.Equal(t, "zh-TW", cfg.TargetLang)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLIPTL_TARGET_LANG", "fr")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GOOGLE_TRANSLATE_APIKEY", "g-env")
	path := writeConfig(t, "config.yaml", "target_lang: de\nmemory:\n  backend: none\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.TargetLang)
	assert.Equal(t, "sk-env", cfg.Credentials.OpenAI.APIKey)
	assert.Equal(t, "g-env", cfg.Credentials.Cloud.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "deepl" }, "Provider"},
		{"auto target", func(c *Config) { c.TargetLang = "auto" }, "TargetLang"},
		{"malformed source", func(c *Config) { c.SourceLang = "not a language" }, "SourceLang"},
		{"unknown backend", func(c *Config) { c.Memory.Backend = "mongo" }, "Backend"},
		{"redis without url", func(c *Config) { c.Memory.Backend = BackendRedis }, "RedisURL"},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, "RequestTimeout"},
		{"negative rate limit", func(c *Config) { c.RateLimitRPM = -1 }, "RateLimitRPM"},
		{"bad base url", func(c *Config) { c.Credentials.OpenAI.BaseURL = "not a url" }, "BaseURL"},
		{"unknown env", func(c *Config) { c.Env = "staging" }, "Env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.field), "error %q should name %s", err, tt.field)
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	_, ok := Default().RateLimit()
	assert.False(t, ok)
}
