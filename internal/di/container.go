package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/collector"
	"github.com/keyurpatil06/phishlens/internal/adapters/enrichment"
	"github.com/keyurpatil06/phishlens/internal/adapters/filter"
	"github.com/keyurpatil06/phishlens/internal/adapters/reputation"
	"github.com/keyurpatil06/phishlens/internal/adapters/safebrowsing"
	"github.com/keyurpatil06/phishlens/internal/adapters/virustotal"
	"github.com/keyurpatil06/phishlens/internal/config"
	"github.com/keyurpatil06/phishlens/internal/core"
	"github.com/keyurpatil06/phishlens/internal/extract"
	"github.com/keyurpatil06/phishlens/internal/factory"
	"github.com/keyurpatil06/phishlens/internal/logging"
	"github.com/keyurpatil06/phishlens/internal/ports"
	"github.com/keyurpatil06/phishlens/internal/queue"
	"github.com/keyurpatil06/phishlens/internal/rules"
	"github.com/keyurpatil06/phishlens/internal/server"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEnricherFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewQueueFactory); err != nil {
		return nil, err
	}

	// Register heuristic scorer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.RuleScorer {
		rulesCfg := cfg.GetRules()
		return rules.NewScorer(rulesCfg.BrandDomains, rulesCfg.SuspiciousTLDs, rulesCfg.UrgencyPhrases, logger)
	}); err != nil {
		return nil, err
	}

	// Register email extractor
	if err := container.Provide(func(logger *zap.Logger) core.EmailExtractor {
		return extract.NewExtractor(logger)
	}); err != nil {
		return nil, err
	}

	// Register remote verdict client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*virustotal.Client, error) {
		vtCfg, err := cfg.GetVirusTotal()
		if err != nil {
			return nil, err
		}
		return virustotal.NewClient(vtCfg.APIKey, vtCfg.BaseURL, vtCfg.PollAttempts, vtCfg.PollInterval, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register Safe Browsing client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *safebrowsing.Client {
		sbCfg := cfg.GetSafeBrowsing()
		return safebrowsing.NewClient(sbCfg.APIKey, sbCfg.BaseURL, logger)
	}); err != nil {
		return nil, err
	}

	// Register reputation checker
	if err := container.Provide(func(gsb *safebrowsing.Client, vt *virustotal.Client, logger *zap.Logger) core.ReputationChecker {
		return reputation.NewChecker(gsb, vt, logger)
	}); err != nil {
		return nil, err
	}

	// Register enricher
	if err := container.Provide(func(f *factory.EnricherFactory) (*enrichment.Enricher, error) {
		return f.CreateEnricher()
	}); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register delivery queue
	if err := container.Provide(func(cfg *config.Config, f *factory.QueueFactory, logger *zap.Logger) (*queue.DeliveryQueue, error) {
		store, err := f.CreateQueueStore()
		if err != nil {
			return nil, err
		}
		drainInterval, err := f.GetDrainInterval()
		if err != nil {
			return nil, err
		}
		collectorCfg := cfg.GetCollector()
		sender := collector.NewHTTPSender(collectorCfg.URL, collectorCfg.Token, logger)
		return queue.NewDeliveryQueue(store, sender, drainInterval, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(func(
		cfg *config.Config,
		cacheFactory *factory.CacheFactory,
		scorer core.RuleScorer,
		verdicts *virustotal.Client,
		extractor core.EmailExtractor,
		enricher *enrichment.Enricher,
		checker core.ReputationChecker,
		cache core.VerdictCache,
		deliveryQueue *queue.DeliveryQueue,
		logger *zap.Logger,
	) (*core.ScanService, error) {
		scanTimeout, err := cfg.GetDuration("scan.timeout")
		if err != nil {
			return nil, err
		}
		cacheTTL, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		vtCfg, err := cfg.GetVirusTotal()
		if err != nil {
			return nil, err
		}
		collectorCfg := cfg.GetCollector()

		return core.NewScanService(core.ScanServiceParams{
			Scorer:         scorer,
			Verdicts:       verdicts,
			Extractor:      extractor,
			Enricher:       enricher,
			Reputation:     checker,
			Cache:          cache,
			Queue:          deliveryQueue,
			Logger:         logger,
			ScanTimeout:    scanTimeout,
			CacheEnabled:   cacheFactory.IsCacheEnabled(),
			CacheTTL:       cacheTTL,
			CaptureEnabled: collectorCfg.URL != "",
			HasCredential:  vtCfg.APIKey != "",
		}), nil
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(svc *core.ScanService, cfg *config.Config, logger *zap.Logger) *server.Server {
		return server.New(svc, logger, cfg.GetString("server.listen_address"))
	}); err != nil {
		return nil, err
	}

	// Register SMTP filter
	if err := container.Provide(func(svc *core.ScanService, cfg *config.Config, logger *zap.Logger) ports.IngestFilter {
		return filter.NewSMTPFilter(
			svc,
			logger,
			cfg.GetString("smtp.listen_address"),
			cfg.GetBool("smtp.block_high_risk"),
			cfg.GetString("smtp.headers.level"),
			cfg.GetString("smtp.headers.score"),
			cfg.GetString("smtp.headers.reasons"),
			cfg.GetString("smtp.upstream_address"),
			cfg.GetInt("smtp.upstream_port"),
			cfg.GetBool("smtp.upstream_enabled"),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
