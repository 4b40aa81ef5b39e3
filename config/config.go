// Package config loads and holds the user configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/cliptl"
)

// Provider ids accepted in the configuration.
const (
	ProviderGoogle = "google"
	ProviderCloud  = "cloud"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Memory backends accepted in the configuration.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

type Config struct {
	Provider       string        `mapstructure:"provider" validate:"oneof=google cloud openai mock"`
	SourceLang     string        `mapstructure:"source_lang" validate:"required,lang"`
	TargetLang     string        `mapstructure:"target_lang" validate:"required,lang,target_lang"`
	AutoTranslate  bool          `mapstructure:"auto_translate"`
	Credentials    Credentials   `mapstructure:"credentials"`
	Memory         MemoryConfig  `mapstructure:"memory"`
	Popup          PopupConfig   `mapstructure:"popup"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1"`
	WatchInterval  time.Duration `mapstructure:"watch_interval" validate:"min=1"`
	RateLimitRPM   int           `mapstructure:"rate_limit_rpm" validate:"min=0,max=6000"`
	Env            string        `mapstructure:"env" validate:"oneof=development production"`
}

type Credentials struct {
	Google GoogleCredentials `mapstructure:"google"`
	Cloud  CloudCredentials  `mapstructure:"cloud"`
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// GoogleCredentials configures the keyless web endpoint.
type GoogleCredentials struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// CloudCredentials configures Google Cloud Translation v2.
type CloudCredentials struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// OpenAICredentials configures any OpenAI-compatible chat completion API.
type OpenAICredentials struct {
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url" validate:"omitempty,url"`
	Model        string  `mapstructure:"model"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	Temperature  float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

type MemoryConfig struct {
	Backend   string `mapstructure:"backend" validate:"oneof=sqlite redis memory none"`
	Path      string `mapstructure:"path" validate:"required_if=Backend sqlite"`
	RedisURL  string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl" validate:"min=0"` // seconds, 0 = never expire
}

type PopupConfig struct {
	SuccessTimeout time.Duration `mapstructure:"success_timeout" validate:"min=1"`
	ErrorTimeout   time.Duration `mapstructure:"error_timeout" validate:"min=1"`
	LeaveGrace     time.Duration `mapstructure:"leave_grace" validate:"min=1"`
	ScreenWidth    int           `mapstructure:"screen_width" validate:"min=0"`
	ScreenHeight   int           `mapstructure:"screen_height" validate:"min=0"`
	Notify         bool          `mapstructure:"notify"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:      ProviderGoogle,
		SourceLang:    cliptl.AutoLang,
		TargetLang:    "zh-TW",
		AutoTranslate: true,
		Credentials: Credentials{
			OpenAI: OpenAICredentials{
				Model:        "gpt-4o-mini",
				SystemPrompt: DefaultSystemPrompt,
				Temperature:  0.3,
			},
		},
		Memory: MemoryConfig{
			Backend:   BackendSQLite,
			Path:      DefaultDatabasePath(),
			KeyPrefix: "cliptl:",
		},
		Popup: PopupConfig{
			SuccessTimeout: 15 * time.Second,
			ErrorTimeout:   5 * time.Second,
			LeaveGrace:     3 * time.Second,
			ScreenWidth:    1920,
			ScreenHeight:   1080,
		},
		RequestTimeout: cliptl.DefaultRequestTimeout,
		WatchInterval:  2 * time.Second,
		Env:            "production",
	}
}

// DefaultSystemPrompt instructs a chat model to answer with the translation only.
const DefaultSystemPrompt = "You are a professional translator. Translate the following text accurately while preserving the original meaning and context. Only provide the translation without any additional explanation."

// Dir returns the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, cliptl.Name)
}

// DefaultDatabasePath returns the default SQLite file location.
func DefaultDatabasePath() string {
	return filepath.Join(Dir(), "translations.db")
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("provider", d.Provider)
	v.SetDefault("source_lang", d.SourceLang)
	v.SetDefault("target_lang", d.TargetLang)
	v.SetDefault("auto_translate", d.AutoTranslate)

	v.SetDefault("credentials.google.endpoint", d.Credentials.Google.Endpoint)
	v.SetDefault("credentials.cloud.api_key", d.Credentials.Cloud.APIKey)
	v.SetDefault("credentials.cloud.endpoint", d.Credentials.Cloud.Endpoint)
	v.SetDefault("credentials.openai.api_key", d.Credentials.OpenAI.APIKey)
	v.SetDefault("credentials.openai.base_url", d.Credentials.OpenAI.BaseURL)
	v.SetDefault("credentials.openai.model", d.Credentials.OpenAI.Model)
	v.SetDefault("credentials.openai.system_prompt", d.Credentials.OpenAI.SystemPrompt)
	v.SetDefault("credentials.openai.temperature", d.Credentials.OpenAI.Temperature)

	v.SetDefault("memory.backend", d.Memory.Backend)
	v.SetDefault("memory.path", d.Memory.Path)
	v.SetDefault("memory.redis_url", d.Memory.RedisURL)
	v.SetDefault("memory.key_prefix", d.Memory.KeyPrefix)
	v.SetDefault("memory.ttl", d.Memory.TTL)

	v.SetDefault("popup.success_timeout", d.Popup.SuccessTimeout)
	v.SetDefault("popup.error_timeout", d.Popup.ErrorTimeout)
	v.SetDefault("popup.leave_grace", d.Popup.LeaveGrace)
	v.SetDefault("popup.screen_width", d.Popup.ScreenWidth)
	v.SetDefault("popup.screen_height", d.Popup.ScreenHeight)
	v.SetDefault("popup.notify", d.Popup.Notify)

	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("watch_interval", d.WatchInterval)
	v.SetDefault("rate_limit_rpm", d.RateLimitRPM)
	v.SetDefault("env", d.Env)
}

// Load reads the configuration. path may be empty, in which case config.{json,yaml}
// is looked up in the working directory and Dir(); a missing file is not an
// error. Environment variables prefixed CLIPTL_ override file values, and the
// conventional OPENAI_API_KEY and GOOGLE_TRANSLATE_APIKEY are honoured.
func Load(path string) (*Config, error) {
	// A .env file is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CLIPTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("credentials.openai.api_key", "CLIPTL_CREDENTIALS_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY: %w", err)
	}
	if err := v.BindEnv("credentials.cloud.api_key", "CLIPTL_CREDENTIALS_CLOUD_API_KEY", "GOOGLE_TRANSLATE_APIKEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_TRANSLATE_APIKEY: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Normalize()
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize canonicalises language codes and provider names.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.SourceLang = cliptl.NormalizeLang(c.SourceLang)
	c.TargetLang = cliptl.NormalizeLang(c.TargetLang)
	c.Memory.Backend = strings.ToLower(strings.TrimSpace(c.Memory.Backend))
}

// RateLimit returns the limiter configuration, or false when limiting is off.
func (c Config) RateLimit() (cliptl.RateLimitConfig, bool) {
	if c.RateLimitRPM <= 0 {
		return cliptl.RateLimitConfig{}, false
	}
	return cliptl.RateLimitConfig{RequestsPerMinute: c.RateLimitRPM, BurstSize: 1}, true
}

// Screen returns the configured screen area for popup placement.
func (c Config) Screen() cliptl.Rect {
	return cliptl.Rect{Width: c.Popup.ScreenWidth, Height: c.Popup.ScreenHeight}
}
