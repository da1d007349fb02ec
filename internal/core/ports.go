package core

import (
	"context"
	"time"
)

// RuleScorer defines the interface for the deterministic heuristic scorer
type RuleScorer interface {
	// ScoreURL derives a rule-based risk score for one URL
	ScoreURL(rawURL string) RuleCheckResult

	// ScoreEmail derives a rule-based risk score for one email
	ScoreEmail(features EmailFeatures) RuleCheckResult
}

// VerdictClient defines the interface for the remote analysis service
type VerdictClient interface {
	// SubmitAndAwaitVerdict submits a URL for analysis and polls until a
	// terminal status is reached. It returns either normalized stats or an
	// error, never both.
	SubmitAndAwaitVerdict(ctx context.Context, targetURL string) (*VerdictStats, error)
}

// EmailExtractor defines the interface for turning raw email text into features
type EmailExtractor interface {
	// Parse extracts scoring features from a raw RFC 5322 message
	Parse(raw string) (EmailFeatures, error)

	// ExtractURLs finds bare http(s) URLs in free-form text
	ExtractURLs(text string) []string
}

// Enricher defines the interface for threat info enrichment. Implementations
// must substitute default content on failure rather than returning an error.
type Enricher interface {
	Enrich(ctx context.Context, category RiskCategory, targetURL string) ThreatInfo
}

// ReputationChecker defines the interface for the batch URL cross-check
type ReputationChecker interface {
	Check(ctx context.Context, urls []string) ([]ReputationResult, error)
}

// VerdictCache defines the interface for caching normalized remote verdicts
type VerdictCache interface {
	// Get retrieves a cached verdict for a URL
	Get(targetURL string) (*VerdictStats, bool)

	// Set stores a verdict with a TTL
	Set(targetURL string, stats *VerdictStats, ttl time.Duration)
}

// QueueStore defines the persistence interface for the delivery queue.
// Implementations only load and save the item list; queue semantics live
// in the queue package.
type QueueStore interface {
	Load(ctx context.Context) ([]QueueItem, error)
	Save(ctx context.Context, items []QueueItem) error
}

// EventSender defines the interface for delivering one captured event
type EventSender interface {
	Send(ctx context.Context, item QueueItem) error
}

// CaptureQueue defines the interface the scan path uses to hand events
// to the store-and-forward queue
type CaptureQueue interface {
	Enqueue(ctx context.Context, payload interface{}) error
}
