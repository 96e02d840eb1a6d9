package config

import (
	"time"

	"github.com/jackzampolin/easel/internal/provider"
)

// Config holds easel configuration.
// Stored at: ~/.easel/config.yaml
type Config struct {
	Log       LogCfg       `mapstructure:"log" yaml:"log"`
	Store     StoreCfg     `mapstructure:"store" yaml:"store"`
	Images    ImagesCfg    `mapstructure:"images" yaml:"images"`
	Expansion ExpansionCfg `mapstructure:"expansion" yaml:"expansion"`
	Provider  ProviderCfg  `mapstructure:"provider" yaml:"provider"`
	Server    ServerCfg    `mapstructure:"server" yaml:"server"`
	Defaults  DefaultsCfg  `mapstructure:"defaults" yaml:"defaults"`
}

// LogCfg configures structured logging.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// StoreCfg configures the prompt database.
type StoreCfg struct {
	Path string `mapstructure:"path" yaml:"path"` // Empty uses {home}/data/easel.db
}

// ImagesCfg configures where generated images are written.
type ImagesCfg struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // Empty uses {home}/images
}

// ExpansionCfg configures template expansion.
type ExpansionCfg struct {
	Limit int `mapstructure:"limit" yaml:"limit"` // Cap for "generate all" expansion
}

// ProviderCfg configures the image generation provider.
type ProviderCfg struct {
	Name           string `mapstructure:"name" yaml:"name"`             // "openai" or "mock"
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`     // Optional API base override
	Model          string `mapstructure:"model" yaml:"model"`           // "dall-e-3", "dall-e-2"
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// ServerCfg configures the HTTP API server.
type ServerCfg struct {
	Host                   string `mapstructure:"host" yaml:"host"`
	Port                   string `mapstructure:"port" yaml:"port"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// DefaultsCfg specifies default generation parameters.
type DefaultsCfg struct {
	Size    string `mapstructure:"size" yaml:"size"`       // "1024x1024", "1792x1024", "1024x1792"
	Quality string `mapstructure:"quality" yaml:"quality"` // "standard" or "hd"
	Style   string `mapstructure:"style" yaml:"style"`     // "vivid" or "natural"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
		Expansion: ExpansionCfg{
			Limit: 10,
		},
		Provider: ProviderCfg{
			Name:           "openai",
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "dall-e-3",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		Server: ServerCfg{
			Host:                   "127.0.0.1",
			Port:                   "8750",
			ShutdownTimeoutSeconds: 30,
		},
		Defaults: DefaultsCfg{
			Size:    "1024x1024",
			Quality: "standard",
			Style:   "vivid",
		},
	}
}

// ResolvedAPIKey returns the provider API key with ${ENV_VAR} references expanded.
func (c *Config) ResolvedAPIKey() string {
	return ResolveEnvVars(c.Provider.APIKey)
}

// EffectiveProvider returns the provider name to use. An openai provider
// without a resolvable API key degrades to the mock provider so generation
// still works offline with simulated images.
func (c *Config) EffectiveProvider() string {
	name := c.Provider.Name
	if name == "" {
		name = "openai"
	}
	if name == "openai" && c.ResolvedAPIKey() == "" {
		return "mock"
	}
	return name
}

// ToImageClientConfig maps provider and default settings onto the image
// client config, with the API key resolved.
func (c *Config) ToImageClientConfig() provider.OpenAIImageConfig {
	return provider.OpenAIImageConfig{
		APIKey:     c.ResolvedAPIKey(),
		Model:      c.Provider.Model,
		Size:       c.Defaults.Size,
		Quality:    c.Defaults.Quality,
		Style:      c.Defaults.Style,
		MaxRetries: c.Provider.MaxRetries,
		Timeout:    c.ProviderTimeout(),
		BaseURL:    c.Provider.BaseURL,
	}
}

// ProviderTimeout returns the provider HTTP timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	if c.Provider.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the server shutdown grace period as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// ExpansionLimit returns the "generate all" cap, falling back to the default.
func (c *Config) ExpansionLimit() int {
	if c.Expansion.Limit <= 0 {
		return 10
	}
	return c.Expansion.Limit
}
