package gemini

import (
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/enrichment"
	"github.com/keyurpatil06/phishlens/internal/config"
)

// Factory creates new instances of TipsClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for TipsClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a new Gemini tips generator
func (f *Factory) CreateGenerator() (enrichment.TipsGenerator, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewTipsClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
}
