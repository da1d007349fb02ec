package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/bedrock"
	"github.com/keyurpatil06/phishlens/internal/adapters/enrichment"
	"github.com/keyurpatil06/phishlens/internal/adapters/gemini"
	"github.com/keyurpatil06/phishlens/internal/adapters/openai"
	"github.com/keyurpatil06/phishlens/internal/config"
)

// EnricherFactory creates threat-info enrichers
type EnricherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEnricherFactory creates a new enricher factory
func NewEnricherFactory(cfg *config.Config, logger *zap.Logger) *EnricherFactory {
	return &EnricherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEnricher creates an enricher based on the configuration. The static
// provider needs no credentials and is the default; the model-backed
// providers fall back to the static catalog when a call fails.
func (f *EnricherFactory) CreateEnricher() (*enrichment.Enricher, error) {
	enrichmentCfg := f.cfg.GetEnrichment()

	switch enrichmentCfg.Provider {
	case "static", "":
		return enrichment.NewEnricher(nil, f.logger), nil
	case "openai":
		generator, err := openai.NewFactory(f.cfg, f.logger).CreateGenerator()
		if err != nil {
			return nil, err
		}
		return enrichment.NewEnricher(generator, f.logger), nil
	case "gemini":
		generator, err := gemini.NewFactory(f.cfg, f.logger).CreateGenerator()
		if err != nil {
			return nil, err
		}
		return enrichment.NewEnricher(generator, f.logger), nil
	case "bedrock":
		generator, err := bedrock.NewFactory(f.cfg, f.logger).CreateGenerator()
		if err != nil {
			return nil, err
		}
		return enrichment.NewEnricher(generator, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported enrichment provider: %s", enrichmentCfg.Provider)
	}
}
