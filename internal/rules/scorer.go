package rules

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// Score weights for the individual URL checks.
const (
	weightMalformedURL  = 10
	weightPunycodeHost  = 15
	weightSuspiciousTLD = 8
	weightTyposquat     = 12
	weightDataURI       = 6
	weightLongPath      = 4

	maxPathQueryLen = 200
)

// Score weights for the email-level checks.
const (
	weightMissingSender    = 10
	weightSupportSpoof     = 8
	weightPunycodeSender   = 15
	weightBidiControls     = 12
	weightUrgencyBase      = 5
	weightUrgencyPerPhrase = 2

	weightLinkSuspiciousTLD = 6
	weightLinkTyposquat     = 10
	weightLinkMismatch      = 6
	weightLinkDataURI       = 4
)

// maxReasons caps the reason list on every result
const maxReasons = 8

// Bidirectional text controls (RLO and friends) used to disguise text
// direction in phishing bodies.
var bidiControls = []rune{
	'\u202a', '\u202b', '\u202c', '\u202d', '\u202e',
	'\u2066', '\u2067', '\u2068', '\u2069',
}

// Scorer is the deterministic heuristic scorer. It performs no I/O; every
// method is a pure function of its input and the configured word lists.
type Scorer struct {
	brandDomains   []string
	suspiciousTLDs []string
	urgencyPhrases []string
	logger         *zap.Logger
}

// NewScorer creates a new heuristic scorer
func NewScorer(brandDomains, suspiciousTLDs, urgencyPhrases []string, logger *zap.Logger) *Scorer {
	normalize := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &Scorer{
		brandDomains:   normalize(brandDomains),
		suspiciousTLDs: normalize(suspiciousTLDs),
		urgencyPhrases: normalize(urgencyPhrases),
		logger:         logger,
	}
}

// ScoreURL derives a rule-based risk score for one URL
func (s *Scorer) ScoreURL(rawURL string) core.RuleCheckResult {
	score := 0
	var reasons []string

	features := DeriveURLFeatures(rawURL)

	if features.Malformed || features.Hostname == "" {
		score += weightMalformedURL
		reasons = append(reasons, "invalid/malformed URL")
	}

	if features.Punycode {
		score += weightPunycodeHost
		reasons = append(reasons, "Punycode domain detected.")
	}

	if tld, ok := s.suspiciousTLD(features.Hostname); ok {
		score += weightSuspiciousTLD
		reasons = append(reasons, fmt.Sprintf("Suspicious TLD: .%s", tld))
	}

	if s.LooksTyposquat(features.Hostname) {
		score += weightTyposquat
		reasons = append(reasons, fmt.Sprintf("Domain looks like a brand typosquat: %s", features.Hostname))
	}

	if features.IsDataURI {
		score += weightDataURI
		reasons = append(reasons, "Data URI link present.")
	}

	if features.PathQueryLen > maxPathQueryLen {
		score += weightLongPath
		reasons = append(reasons, "Unusually long path or query string.")
	}

	return s.finish(score, reasons)
}

// ScoreEmail derives a rule-based risk score for one email
func (s *Scorer) ScoreEmail(features core.EmailFeatures) core.RuleCheckResult {
	score := 0
	var reasons []string

	fromDomain := domainFromAddress(features.FromEmail)
	if fromDomain == "" {
		score += weightMissingSender
		reasons = append(reasons, "Sender address missing or malformed.")
	}

	if fromDomain != "" && strings.Contains(strings.ToLower(features.FromName), "support") {
		if !s.isBrandDomain(fromDomain) {
			score += weightSupportSpoof
			reasons = append(reasons, "Display name suggests support, domain not recognized.")
		}
	}

	if hasPunycodeLabel(fromDomain) {
		score += weightPunycodeSender
		reasons = append(reasons, "Punycode domain detected.")
	}

	if containsBidiControls(features.BodyText) {
		score += weightBidiControls
		reasons = append(reasons, "Hidden unicode control characters found.")
	}

	if hits := s.urgencyHits(features.Subject, features.BodyText); hits > 0 {
		score += weightUrgencyBase + weightUrgencyPerPhrase*hits
		reasons = append(reasons, "Urgent/pressure wording detected.")
	}

	sawLinks := false
	for _, link := range features.Links {
		host := hostnameFromURL(link.Href)
		if host == "" {
			continue
		}
		sawLinks = true

		if _, ok := s.suspiciousTLD(host); ok {
			score += weightLinkSuspiciousTLD
			reasons = append(reasons, fmt.Sprintf("Suspicious TLD: %s", host))
		}
		if s.LooksTyposquat(host) {
			score += weightLinkTyposquat
			reasons = append(reasons, fmt.Sprintf("Domain looks like a brand typosquat: %s", host))
		}
		if linkTextMismatch(link.Text, host) {
			score += weightLinkMismatch
			reasons = append(reasons, "Link text does not match destination.")
		}
		if link.IsDataURI {
			score += weightLinkDataURI
			reasons = append(reasons, "Data URI link present.")
		}
	}
	if !sawLinks {
		reasons = append(reasons, "No links detected.")
	}

	return s.finish(score, reasons)
}

// LooksTyposquat reports whether the hostname is one edit away from a brand
// domain, or sits directly under one. The subdomain case flags legitimate
// hosts like mail.google.com as well; that is a deliberate broadness of this
// heuristic, a signal rather than a verdict, and the aggregator keeps it
// separate from the reputation result for exactly that reason.
func (s *Scorer) LooksTyposquat(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, brand := range s.brandDomains {
		if editDistance(host, brand) == 1 {
			return true
		}
		if strings.HasSuffix(host, "."+brand) {
			return true
		}
	}
	return false
}

// finish applies deduplication, the reason cap and the level thresholds
func (s *Scorer) finish(score int, reasons []string) core.RuleCheckResult {
	return core.RuleCheckResult{
		Score:   score,
		Level:   core.LevelForScore(score),
		Reasons: dedupeReasons(reasons),
	}
}

// suspiciousTLD reports whether the hostname ends in a configured TLD
func (s *Scorer) suspiciousTLD(host string) (string, bool) {
	for _, tld := range s.suspiciousTLDs {
		if strings.HasSuffix(host, "."+tld) {
			return tld, true
		}
	}
	return "", false
}

// isBrandDomain reports whether the domain is, or ends with, a brand domain
func (s *Scorer) isBrandDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, brand := range s.brandDomains {
		if domain == brand || strings.HasSuffix(domain, brand) {
			return true
		}
	}
	return false
}

// urgencyHits counts distinct urgency phrases in subject and body
func (s *Scorer) urgencyHits(subject, body string) int {
	text := strings.ToLower(subject + "\n" + body)
	hits := 0
	for _, phrase := range s.urgencyPhrases {
		if strings.Contains(text, phrase) {
			hits++
		}
	}
	return hits
}

// dedupeReasons removes duplicates preserving first-seen order and caps the
// list, regardless of how many conditions fired
func dedupeReasons(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
		if len(out) == maxReasons {
			break
		}
	}
	return out
}

// containsBidiControls reports whether text carries right-to-left override
// characters
func containsBidiControls(text string) bool {
	return strings.ContainsAny(text, string(bidiControls))
}

// domainFromAddress extracts the lowercased domain from an email address
func domainFromAddress(addr string) string {
	addr = strings.TrimSpace(strings.TrimSuffix(addr, ">"))
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}

// hostnameFromURL extracts the lowercased hostname, empty when unparsable
func hostnameFromURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// linkTextMismatch reports whether anchor text that itself looks like a
// hostname points somewhere else
func linkTextMismatch(text, host string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || host == "" {
		return false
	}
	return strings.Contains(text, ".") && !strings.Contains(text, host)
}
