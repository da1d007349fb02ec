package enrichment

import (
	"context"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// TipsGenerator defines the interface for AI-backed threat tip generation
type TipsGenerator interface {
	// GenerateTips produces guidance for a risk category and target URL
	GenerateTips(ctx context.Context, category core.RiskCategory, targetURL string) (*core.ThreatInfo, error)
}

// Enricher resolves threat guidance for a risk category. With a generator
// configured it asks the AI provider first; any failure falls back to the
// static catalog, so enrichment itself can never fail a scan.
type Enricher struct {
	generator TipsGenerator
	logger    *zap.Logger
}

// NewEnricher creates a new enricher. The generator may be nil, in which
// case the static catalog is used directly.
func NewEnricher(generator TipsGenerator, logger *zap.Logger) *Enricher {
	return &Enricher{
		generator: generator,
		logger:    logger,
	}
}

// Enrich returns threat guidance for the category, never an error
func (e *Enricher) Enrich(ctx context.Context, category core.RiskCategory, targetURL string) core.ThreatInfo {
	if e.generator == nil {
		return Lookup(category)
	}

	info, err := e.generator.GenerateTips(ctx, category, targetURL)
	if err != nil {
		e.logger.Warn("Tip generation failed, using static guidance",
			zap.String("category", string(category)),
			zap.Error(err))
		return Lookup(category)
	}
	return *info
}
