package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/virustotal"
	"github.com/keyurpatil06/phishlens/internal/config"
	"github.com/keyurpatil06/phishlens/internal/core"
	"github.com/keyurpatil06/phishlens/internal/extract"
	"github.com/keyurpatil06/phishlens/internal/factory"
	"github.com/keyurpatil06/phishlens/internal/logging"
	"github.com/keyurpatil06/phishlens/internal/rules"
)

var (
	// Target flags
	targetURL = flag.String("url", "", "URL to scan")
	inputFile = flag.String("file", "", "Input email file (use stdin if not specified)")

	// VirusTotal flags
	vtAPIKey       = flag.String("vt-api-key", "", "API key for VirusTotal")
	vtPollAttempts = flag.Int("vt-poll-attempts", 20, "Maximum verdict poll attempts")
	vtPollInterval = flag.Duration("vt-poll-interval", time.Second, "Delay between verdict polls")

	// Enrichment flags
	enrichProvider = flag.String("enrichment", "static", "Enrichment provider (static, openai, gemini, bedrock)")
	openaiAPIKey   = flag.String("openai-api-key", "", "API key for OpenAI")
	geminiAPIKey   = flag.String("gemini-api-key", "", "API key for Google Gemini")

	// Scan flags
	scanTimeout = flag.Duration("timeout", 45*time.Second, "Overall scan timeout")

	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	vtCfg, err := cfg.GetVirusTotal()
	if err != nil {
		logger.Fatal("Invalid VirusTotal configuration", zap.Error(err))
	}
	if vtCfg.APIKey == "" {
		logger.Fatal("Missing analysis service API key")
	}

	rulesCfg := cfg.GetRules()
	scorer := rules.NewScorer(rulesCfg.BrandDomains, rulesCfg.SuspiciousTLDs, rulesCfg.UrgencyPhrases, logger)
	extractor := extract.NewExtractor(logger)
	verdicts := virustotal.NewClient(vtCfg.APIKey, vtCfg.BaseURL, vtCfg.PollAttempts, vtCfg.PollInterval, logger)

	enricher, err := factory.NewEnricherFactory(cfg, logger).CreateEnricher()
	if err != nil {
		logger.Fatal("Failed to create enricher", zap.Error(err))
	}

	timeout, err := cfg.GetDuration("scan.timeout")
	if err != nil {
		logger.Fatal("Invalid scan timeout", zap.Error(err))
	}

	service := core.NewScanService(core.ScanServiceParams{
		Scorer:        scorer,
		Verdicts:      verdicts,
		Extractor:     extractor,
		Enricher:      enricher,
		Logger:        logger,
		ScanTimeout:   timeout,
		HasCredential: true,
	})

	startTime := time.Now()

	if *targetURL != "" {
		result, err := service.ScanURL(context.Background(), *targetURL)
		if err != nil {
			logger.Fatal("Failed to scan URL", zap.Error(err))
		}
		printURLReport(result)
	} else {
		raw, err := readEmailInput(logger)
		if err != nil {
			logger.Fatal("Failed to read email input", zap.Error(err))
		}
		result, err := service.ScanEmail(context.Background(), raw)
		if err != nil {
			logger.Fatal("Failed to scan email", zap.Error(err))
		}
		printEmailReport(result)
	}

	fmt.Printf("Processing time: %v\n", time.Since(startTime))
}

// readEmailInput reads the raw message from the input file or stdin
func readEmailInput(logger *zap.Logger) (string, error) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return "", err
		}
		defer file.Close()
		reader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printURLReport(result *core.URLAssessment) {
	fmt.Printf("\n=== URL Scan ===\n")
	fmt.Printf("URL: %s\n", result.URL)
	fmt.Printf("Rule score: %d (%s)\n", result.RuleCheck.Score, result.RuleCheck.Level)
	for _, reason := range result.RuleCheck.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	if result.Error != "" {
		fmt.Printf("Remote verdict: unavailable (%s)\n", result.Error)
	} else {
		fmt.Printf("Remote verdict: %s (%d%% flagged, %d engines)\n",
			result.RiskCategory, result.RemoteScore, result.Total)
	}
	fmt.Printf("Overall level: %s\n", result.Overall)

	if result.ThreatInfo != nil {
		fmt.Printf("\n=== Guidance ===\n")
		fmt.Printf("%s\n%s\n", result.ThreatInfo.Title, result.ThreatInfo.Explanation)
		for _, tip := range result.ThreatInfo.Tips {
			fmt.Printf("  - %s\n", tip)
		}
	}
	fmt.Printf("\n")
}

func printEmailReport(result *core.EmailAssessment) {
	fmt.Printf("\n=== Email Scan ===\n")
	fmt.Printf("Rule score: %d (%s)\n", result.RuleCheck.Score, result.RuleCheck.Level)
	for _, reason := range result.RuleCheck.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Printf("URLs found: %d\n", result.TotalURLs)
	fmt.Printf("Malicious links: %t\n", result.HasMalicious)

	for _, urlResult := range result.Results {
		fmt.Printf("\n--- %s ---\n", urlResult.URL)
		fmt.Printf("Rule score: %d (%s)\n", urlResult.RuleCheck.Score, urlResult.RuleCheck.Level)
		if urlResult.Error != "" {
			fmt.Printf("Remote verdict: unavailable (%s)\n", urlResult.Error)
		} else {
			fmt.Printf("Remote verdict: %s (%d%% flagged)\n", urlResult.RiskCategory, urlResult.RemoteScore)
		}
		fmt.Printf("Overall level: %s\n", urlResult.Overall)
	}
	fmt.Printf("\n")
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("virustotal.api_key", strings.TrimSpace(*vtAPIKey))
	v.Set("virustotal.base_url", "https://www.virustotal.com/api/v3")
	v.Set("virustotal.poll_attempts", *vtPollAttempts)
	v.Set("virustotal.poll_interval", vtPollInterval.String())

	v.Set("scan.timeout", scanTimeout.String())

	v.Set("enrichment.provider", *enrichProvider)
	switch *enrichProvider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
	}

	return config.NewFromViper(v)
}
