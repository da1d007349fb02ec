package core

import "math"

// Remote classification thresholds, as percentages of flagged engines.
const (
	highPercentThreshold   = 70
	mediumPercentThreshold = 30
)

// RemotePercent converts verdict stats into a 0-100 risk percentage.
// Everything that is not an explicit "harmless" vote counts against the
// target, undetected engines included.
func RemotePercent(stats VerdictStats) int {
	total := stats.Total()
	if total < 1 {
		total = 1
	}
	flagged := stats.Malicious + stats.Suspicious + stats.Timeout + stats.Undetected
	return int(math.Round(100 * float64(flagged) / float64(total)))
}

// ClassifyRemote maps a remote percentage and an optional enrichment score
// to a risk level
func ClassifyRemote(percent int, enrichmentScore *int) RiskLevel {
	if percent >= highPercentThreshold || (enrichmentScore != nil && *enrichmentScore >= highPercentThreshold) {
		return RiskHigh
	}
	if percent >= mediumPercentThreshold {
		return RiskMedium
	}
	return RiskLow
}

// AggregateURL combines the heuristic result, the remote verdict and the
// already-resolved enrichment into one assessment. It is pure: the verdict
// error, if any, was produced upstream and is only recorded here.
func AggregateURL(target string, rule RuleCheckResult, stats *VerdictStats, info *ThreatInfo, verdictErr error) URLAssessment {
	assessment := URLAssessment{
		URL:        target,
		RuleCheck:  rule,
		ThreatInfo: info,
	}

	var enrichmentScore *int
	if info != nil {
		enrichmentScore = info.Score
	}

	if verdictErr != nil {
		assessment.Error = verdictErr.Error()
	}

	if stats != nil {
		s := *stats
		assessment.Stats = &s
		assessment.Total = s.Total()
		assessment.RemoteScore = RemotePercent(s)
		assessment.RiskCategory = s.Category()
		assessment.Malicious = s.Malicious+s.Suspicious > 0
		assessment.Remote = ClassifyRemote(assessment.RemoteScore, enrichmentScore)
	} else {
		assessment.RiskCategory = CategoryUnrated
		assessment.Remote = ClassifyRemote(0, enrichmentScore)
	}

	assessment.Overall = MaxLevel(rule.Level, assessment.Remote)
	return assessment
}

// AggregateEmail combines per-link assessments with the email-level
// heuristic result. HasMalicious reflects the links' remote verdicts only,
// independent of the email-level heuristic score.
func AggregateEmail(rule RuleCheckResult, results []URLAssessment) EmailAssessment {
	hasMalicious := false
	for _, r := range results {
		if r.Malicious {
			hasMalicious = true
			break
		}
	}
	return EmailAssessment{
		RuleCheck:    rule,
		TotalURLs:    len(results),
		Results:      results,
		HasMalicious: hasMalicious,
	}
}
