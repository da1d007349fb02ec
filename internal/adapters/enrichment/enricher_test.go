package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

type stubGenerator struct {
	info *core.ThreatInfo
	err  error
}

func (s *stubGenerator) GenerateTips(ctx context.Context, category core.RiskCategory, targetURL string) (*core.ThreatInfo, error) {
	return s.info, s.err
}

func TestLookupCoversEveryCategory(t *testing.T) {
	for _, category := range []core.RiskCategory{
		core.CategoryMalicious, core.CategorySuspicious, core.CategoryHarmless, core.CategoryUnrated,
	} {
		info := Lookup(category)
		assert.NotEmpty(t, info.Title, "category %s", category)
		assert.NotEmpty(t, info.Explanation, "category %s", category)
		assert.NotEmpty(t, info.Tips, "category %s", category)
	}
}

func TestLookupUnknownFallsBackToUnrated(t *testing.T) {
	assert.Equal(t, Lookup(core.CategoryUnrated), Lookup(core.RiskCategory("bogus")))
}

func TestEnrichWithoutGeneratorUsesCatalog(t *testing.T) {
	e := NewEnricher(nil, zap.NewNop())

	info := e.Enrich(context.Background(), core.CategoryMalicious, "http://x.example/")
	assert.Equal(t, "Malicious Website Detected", info.Title)
	assert.Equal(t, "critical", info.Severity)
}

func TestEnrichGeneratorResultWins(t *testing.T) {
	score := 88
	e := NewEnricher(&stubGenerator{info: &core.ThreatInfo{
		Title: "Generated",
		Tips:  []string{"one"},
		Score: &score,
	}}, zap.NewNop())

	info := e.Enrich(context.Background(), core.CategorySuspicious, "http://x.example/")
	assert.Equal(t, "Generated", info.Title)
	assert.Equal(t, 88, *info.Score)
}

func TestEnrichGeneratorFailureFallsBack(t *testing.T) {
	e := NewEnricher(&stubGenerator{err: errors.New("model unavailable")}, zap.NewNop())

	info := e.Enrich(context.Background(), core.CategorySuspicious, "http://x.example/")
	assert.Equal(t, "Suspicious Website Behavior", info.Title)
}
