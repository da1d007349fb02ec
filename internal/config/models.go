package config

import "time"

// VirusTotalConfig represents the configuration for the remote analysis service
type VirusTotalConfig struct {
	APIKey       string
	BaseURL      string
	PollAttempts int
	PollInterval time.Duration
}

// SafeBrowsingConfig represents the configuration for Google Safe Browsing
type SafeBrowsingConfig struct {
	APIKey  string
	BaseURL string
}

// CollectorConfig represents the configuration for the event collector endpoint
type CollectorConfig struct {
	URL   string
	Token string
}

// RulesConfig represents the configuration for the heuristic scorer
type RulesConfig struct {
	BrandDomains   []string
	SuspiciousTLDs []string
	UrgencyPhrases []string
}

// EnrichmentConfig represents the configuration for threat info enrichment
type EnrichmentConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI-compatible endpoints
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GetVirusTotal returns the VirusTotal configuration
func (c *Config) GetVirusTotal() (VirusTotalConfig, error) {
	interval, err := c.GetDuration("virustotal.poll_interval")
	if err != nil {
		return VirusTotalConfig{}, err
	}
	return VirusTotalConfig{
		APIKey:       c.GetString("virustotal.api_key"),
		BaseURL:      c.GetString("virustotal.base_url"),
		PollAttempts: c.GetInt("virustotal.poll_attempts"),
		PollInterval: interval,
	}, nil
}

// GetSafeBrowsing returns the Safe Browsing configuration
func (c *Config) GetSafeBrowsing() SafeBrowsingConfig {
	return SafeBrowsingConfig{
		APIKey:  c.GetString("safebrowsing.api_key"),
		BaseURL: c.GetString("safebrowsing.base_url"),
	}
}

// GetCollector returns the collector configuration
func (c *Config) GetCollector() CollectorConfig {
	return CollectorConfig{
		URL:   c.GetString("collector.url"),
		Token: c.GetString("collector.token"),
	}
}

// GetRules returns the heuristic rule configuration
func (c *Config) GetRules() RulesConfig {
	return RulesConfig{
		BrandDomains:   c.GetStringSlice("rules.brand_domains"),
		SuspiciousTLDs: c.GetStringSlice("rules.suspicious_tlds"),
		UrgencyPhrases: c.GetStringSlice("rules.urgency_phrases"),
	}
}

// GetEnrichment returns the enrichment configuration
func (c *Config) GetEnrichment() EnrichmentConfig {
	return EnrichmentConfig{
		Provider: c.GetString("enrichment.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}
