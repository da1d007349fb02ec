package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishlens/")
	v.AddConfigPath("$HOME/.phishlens")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.mode", "release")

	// Scan defaults
	v.SetDefault("scan.timeout", "45s")

	// VirusTotal defaults
	v.SetDefault("virustotal.api_key", "")
	v.SetDefault("virustotal.base_url", "https://www.virustotal.com/api/v3")
	v.SetDefault("virustotal.poll_attempts", 20)
	v.SetDefault("virustotal.poll_interval", "1s")

	// Safe Browsing defaults
	v.SetDefault("safebrowsing.api_key", "")
	v.SetDefault("safebrowsing.base_url", "https://safebrowsing.googleapis.com")

	// Heuristic rule defaults
	v.SetDefault("rules.brand_domains", []string{
		"google.com", "microsoft.com", "apple.com", "amazon.com", "paypal.com",
		"netflix.com", "adobe.com", "github.com", "zoom.us", "dropbox.com", "icloud.com",
	})
	v.SetDefault("rules.suspicious_tlds", []string{
		"zip", "mov", "lol", "top", "gq", "cf", "tk", "work", "click", "link",
	})
	v.SetDefault("rules.urgency_phrases", []string{
		"urgent", "immediately", "verify your account", "password expired", "final notice",
		"account suspended", "update billing", "confirm identity", "wire transfer", "gift card",
	})

	// Enrichment defaults
	v.SetDefault("enrichment.provider", "static")

	// OpenAI defaults (also used for OpenRouter-compatible endpoints)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.4)
	v.SetDefault("openai.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.4)
	v.SetDefault("bedrock.top_p", 0.9)

	// Verdict cache defaults. Disabled by default so every scan reflects the
	// current reputation of a URL.
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_frequency", "10m")
	v.SetDefault("cache.sqlite_path", "/data/phishlens_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phishlens")

	// Delivery queue defaults
	v.SetDefault("queue.store", "memory")
	v.SetDefault("queue.sqlite_path", "/data/phishlens_queue.db")
	v.SetDefault("queue.drain_interval", "5m")

	// Collector defaults
	v.SetDefault("collector.url", "")
	v.SetDefault("collector.token", "")

	// SMTP ingest defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp.block_high_risk", false)
	v.SetDefault("smtp.upstream_address", "127.0.0.1")
	v.SetDefault("smtp.upstream_port", 10026)
	v.SetDefault("smtp.upstream_enabled", true)
	v.SetDefault("smtp.headers.level", "X-Phish-Level")
	v.SetDefault("smtp.headers.score", "X-Phish-Score")
	v.SetDefault("smtp.headers.reasons", "X-Phish-Reasons")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
