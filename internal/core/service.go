package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingTarget is returned when neither a URL nor an email was supplied
	ErrMissingTarget = errors.New("no URL or email provided")
	// ErrMissingAPIKey is returned when the scanning credential is absent
	ErrMissingAPIKey = errors.New("missing analysis service API key")
)

// ScanService is the core service for phishing risk assessment
type ScanService struct {
	scorer         RuleScorer
	verdicts       VerdictClient
	extractor      EmailExtractor
	enricher       Enricher
	reputation     ReputationChecker
	cache          VerdictCache
	queue          CaptureQueue
	logger         *zap.Logger
	scanTimeout    time.Duration
	cacheEnabled   bool
	cacheTTL       time.Duration
	captureEnabled bool
	hasCredential  bool
}

// ScanServiceParams carries the dependencies and settings for a ScanService
type ScanServiceParams struct {
	Scorer         RuleScorer
	Verdicts       VerdictClient
	Extractor      EmailExtractor
	Enricher       Enricher
	Reputation     ReputationChecker
	Cache          VerdictCache
	Queue          CaptureQueue
	Logger         *zap.Logger
	ScanTimeout    time.Duration
	CacheEnabled   bool
	CacheTTL       time.Duration
	CaptureEnabled bool
	HasCredential  bool
}

// NewScanService creates a new scan service
func NewScanService(p ScanServiceParams) *ScanService {
	return &ScanService{
		scorer:         p.Scorer,
		verdicts:       p.Verdicts,
		extractor:      p.Extractor,
		enricher:       p.Enricher,
		reputation:     p.Reputation,
		cache:          p.Cache,
		queue:          p.Queue,
		logger:         p.Logger,
		scanTimeout:    p.ScanTimeout,
		cacheEnabled:   p.CacheEnabled,
		cacheTTL:       p.CacheTTL,
		captureEnabled: p.CaptureEnabled,
		hasCredential:  p.HasCredential,
	}
}

// ScanURL assesses a single URL. Heuristics always run; the remote verdict
// session may fail, in which case the assessment carries an error field and
// the rule-based signal stands on its own.
func (s *ScanService) ScanURL(ctx context.Context, targetURL string) (*URLAssessment, error) {
	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return nil, ErrMissingTarget
	}
	if !s.hasCredential {
		return nil, ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	assessment := s.assessURL(ctx, targetURL)

	s.capture(ctx, &CaptureEvent{
		ID:           uuid.NewString(),
		Kind:         "url",
		Target:       targetURL,
		Score:        assessment.RuleCheck.Score,
		Level:        assessment.Overall,
		HasMalicious: assessment.Malicious,
		ObservedAt:   time.Now().UTC(),
	})

	return assessment, nil
}

// ScanEmail assesses a raw email: the email-level heuristic check runs over
// sender, body and link features, and every discovered URL gets its own
// concurrent remote-verdict session. One URL's failure never aborts the
// others.
func (s *ScanService) ScanEmail(ctx context.Context, rawEmail string) (*EmailAssessment, error) {
	if strings.TrimSpace(rawEmail) == "" {
		return nil, ErrMissingTarget
	}
	if !s.hasCredential {
		return nil, ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	features, err := s.extractor.Parse(rawEmail)
	if err != nil {
		// An unparsable message still gets scored: treat the whole input
		// as body text so the lexical checks can run.
		s.logger.Warn("Failed to parse email, scoring raw text", zap.Error(err))
		features = EmailFeatures{BodyText: rawEmail}
	}

	rule := s.scorer.ScoreEmail(features)
	urls := s.collectURLs(features)

	results := make([]URLAssessment, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i] = *s.assessURL(ctx, target)
		}(i, u)
	}
	wg.Wait()

	assessment := AggregateEmail(rule, results)

	s.capture(ctx, &CaptureEvent{
		ID:           uuid.NewString(),
		Kind:         "email",
		Target:       features.FromEmail,
		Score:        rule.Score,
		Level:        rule.Level,
		TotalURLs:    assessment.TotalURLs,
		HasMalicious: assessment.HasMalicious,
		ObservedAt:   time.Now().UTC(),
	})

	return &assessment, nil
}

// CrossCheck runs the batch reputation lookup over the given URLs
func (s *ScanService) CrossCheck(ctx context.Context, urls []string) ([]ReputationResult, error) {
	if len(urls) == 0 {
		return nil, ErrMissingTarget
	}
	if s.reputation == nil {
		return []ReputationResult{}, nil
	}
	return s.reputation.Check(ctx, urls)
}

// assessURL runs the full single-URL pipeline: heuristics, cached or fresh
// remote verdict, enrichment, aggregation.
func (s *ScanService) assessURL(ctx context.Context, targetURL string) *URLAssessment {
	rule := s.scorer.ScoreURL(targetURL)

	var stats *VerdictStats
	var verdictErr error

	if s.cacheEnabled && s.cache != nil {
		if cached, ok := s.cache.Get(targetURL); ok {
			s.logger.Debug("Verdict cache hit", zap.String("url", targetURL))
			stats = cached
		}
	}

	if stats == nil {
		stats, verdictErr = s.verdicts.SubmitAndAwaitVerdict(ctx, targetURL)
		if verdictErr != nil {
			s.logger.Warn("Remote verdict session failed",
				zap.String("url", targetURL),
				zap.Error(verdictErr))
		} else if s.cacheEnabled && s.cache != nil {
			s.cache.Set(targetURL, stats, s.cacheTTL)
		}
	}

	category := CategoryUnrated
	if stats != nil {
		category = stats.Category()
	}

	var info *ThreatInfo
	if s.enricher != nil {
		resolved := s.enricher.Enrich(ctx, category, targetURL)
		info = &resolved
	}

	assessment := AggregateURL(targetURL, rule, stats, info, verdictErr)
	return &assessment
}

// collectURLs merges link hrefs with bare URLs found in the body text,
// deduplicated in first-seen order
func (s *ScanService) collectURLs(features EmailFeatures) []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "data:") {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	for _, link := range features.Links {
		if !link.IsDataURI {
			add(link.Href)
		}
	}
	for _, u := range s.extractor.ExtractURLs(features.BodyText) {
		add(u)
	}
	return urls
}

// capture hands a scan event to the delivery queue. Capture is best-effort
// and never fails the scan.
func (s *ScanService) capture(ctx context.Context, event *CaptureEvent) {
	if !s.captureEnabled || s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, event); err != nil {
		s.logger.Error("Failed to enqueue capture event",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
