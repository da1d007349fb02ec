package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	assert.Equal(t, "https://www.virustotal.com/api/v3", cfg.GetString("virustotal.base_url"))
	assert.Equal(t, 20, cfg.GetInt("virustotal.poll_attempts"))
	assert.Equal(t, "static", cfg.GetString("enrichment.provider"))
	assert.False(t, cfg.GetBool("cache.enabled"))
	assert.Equal(t, "memory", cfg.GetString("queue.store"))

	timeout, err := cfg.GetDuration("scan.timeout")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, timeout)
}

func TestGetVirusTotal(t *testing.T) {
	cfg := newDefaultConfig()
	cfg.GetViper().Set("virustotal.api_key", "k")

	vtCfg, err := cfg.GetVirusTotal()
	require.NoError(t, err)
	assert.Equal(t, "k", vtCfg.APIKey)
	assert.Equal(t, 20, vtCfg.PollAttempts)
	assert.Equal(t, time.Second, vtCfg.PollInterval)
}

func TestGetRulesCarriesDefaultLists(t *testing.T) {
	rulesCfg := newDefaultConfig().GetRules()

	assert.Contains(t, rulesCfg.BrandDomains, "paypal.com")
	assert.Contains(t, rulesCfg.SuspiciousTLDs, "top")
	assert.Contains(t, rulesCfg.UrgencyPhrases, "verify your account")
}

func TestGetCollector(t *testing.T) {
	cfg := newDefaultConfig()
	assert.Empty(t, cfg.GetCollector().URL)

	cfg.GetViper().Set("collector.url", "https://collector.example.com")
	cfg.GetViper().Set("collector.token", "tok")
	collectorCfg := cfg.GetCollector()
	assert.Equal(t, "https://collector.example.com", collectorCfg.URL)
	assert.Equal(t, "tok", collectorCfg.Token)
}
