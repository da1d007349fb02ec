package core

import (
	"encoding/json"
	"time"
)

// RiskLevel is the rule-derived severity bucket for a scan target
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Level thresholds for the heuristic score. Kept in one place so the
// rule engine and the aggregator can never drift apart.
const (
	highScoreThreshold   = 25
	mediumScoreThreshold = 12
)

// LevelForScore maps a heuristic score to its severity level
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= highScoreThreshold:
		return RiskHigh
	case score >= mediumScoreThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// rank orders risk levels so the aggregator can pick the stronger signal
func (l RiskLevel) rank() int {
	switch l {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// MaxLevel returns the higher of two risk levels
func MaxLevel(a, b RiskLevel) RiskLevel {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// RuleCheckResult is the output of the heuristic scorer for one target
type RuleCheckResult struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Reasons []string  `json:"reasons"`
}

// Link is one hyperlink extracted from an email body
type Link struct {
	Href      string `json:"href"`
	Text      string `json:"text"`
	IsDataURI bool   `json:"isDataUrl"`
}

// EmailFeatures are the scoring inputs derived from one raw email.
// They live for a single scan request and are never cached.
type EmailFeatures struct {
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail"`
	Subject   string `json:"subject"`
	BodyText  string `json:"bodyText"`
	Links     []Link `json:"links"`
}

// URLFeatures are the structural properties derived from one URL.
// Recomputed per scan, never cached across requests.
type URLFeatures struct {
	Raw               string
	Hostname          string
	RegistrableDomain string
	TLD               string
	Punycode          bool
	IsDataURI         bool
	PathQueryLen      int
	Malformed         bool
}

// RiskCategory is the normalized outcome of a remote reputation lookup
type RiskCategory string

const (
	CategoryMalicious  RiskCategory = "malicious"
	CategorySuspicious RiskCategory = "suspicious"
	CategoryHarmless   RiskCategory = "harmless"
	CategoryUnrated    RiskCategory = "unrated"
)

// VerdictStats holds the normalized engine counts from a completed
// remote analysis. Counters missing upstream default to zero.
type VerdictStats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Timeout    int `json:"timeout"`
	Undetected int `json:"undetected"`
}

// Total returns the sum of all five counters
func (s VerdictStats) Total() int {
	return s.Harmless + s.Malicious + s.Suspicious + s.Timeout + s.Undetected
}

// Category derives the risk category from the counters, in priority order
func (s VerdictStats) Category() RiskCategory {
	switch {
	case s.Malicious > 0:
		return CategoryMalicious
	case s.Suspicious > 0:
		return CategorySuspicious
	case s.Harmless > 0:
		return CategoryHarmless
	default:
		return CategoryUnrated
	}
}

// ThreatInfo is human-readable guidance attached to a risk category
type ThreatInfo struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Tips        []string `json:"tips"`
	Severity    string   `json:"severity,omitempty"`
	Score       *int     `json:"score,omitempty"`
}

// URLAssessment is the unified risk assessment for a single URL
type URLAssessment struct {
	URL          string          `json:"url"`
	RuleCheck    RuleCheckResult `json:"ruleCheck"`
	Stats        *VerdictStats   `json:"stats,omitempty"`
	Total        int             `json:"total"`
	RemoteScore  int             `json:"remoteScore"`
	RiskCategory RiskCategory    `json:"riskCategory,omitempty"`
	Malicious    bool            `json:"malicious"`
	// Remote is the classification derived from the reputation lookup
	// alone; Overall favors the higher of Remote and RuleCheck.Level.
	// Both are exposed so consumers can explain why a target was flagged.
	Remote     RiskLevel   `json:"remoteLevel"`
	Overall    RiskLevel   `json:"overall"`
	ThreatInfo *ThreatInfo `json:"threatInfo,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// EmailAssessment is the unified risk assessment for one email
type EmailAssessment struct {
	RuleCheck    RuleCheckResult `json:"ruleCheck"`
	TotalURLs    int             `json:"totalUrls"`
	Results      []URLAssessment `json:"results"`
	HasMalicious bool            `json:"hasMalicious"`
}

// ReputationResult holds the per-URL flags from the cross-check services
type ReputationResult struct {
	URL          string `json:"url"`
	SafeBrowsing bool   `json:"gsb"`
	VirusTotal   bool   `json:"vt"`
	Flagged      bool   `json:"flagged"`
}

// CaptureEvent describes one completed scan, reported to the collector
type CaptureEvent struct {
	ID           string    `json:"id"`
	Kind         string    `json:"type"`
	Target       string    `json:"target"`
	Score        int       `json:"score"`
	Level        RiskLevel `json:"level"`
	TotalURLs    int       `json:"totalUrls,omitempty"`
	HasMalicious bool      `json:"hasMalicious"`
	ObservedAt   time.Time `json:"observedAt"`
}

// QueueItem is one captured event awaiting delivery to the collector.
// It stays queued until a delivery attempt succeeds.
type QueueItem struct {
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"ts"`
}
