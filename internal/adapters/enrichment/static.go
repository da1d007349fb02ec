package enrichment

import "github.com/keyurpatil06/phishlens/internal/core"

// catalog holds the fixed threat guidance per risk category. It is the
// default enrichment and the fallback whenever an AI generator fails.
var catalog = map[core.RiskCategory]core.ThreatInfo{
	core.CategoryMalicious: {
		Title: "Malicious Website Detected",
		Explanation: "The website is flagged by multiple security vendors for harmful activity " +
			"such as phishing, malware distribution, or credential theft.",
		Tips: []string{
			"Do NOT enter any personal or login information on this website.",
			"Avoid clicking buttons or downloading files from the site.",
			"Close the website and run a security scan if you interacted with it.",
		},
		Severity: "critical",
	},
	core.CategorySuspicious: {
		Title: "Suspicious Website Behavior",
		Explanation: "The scanned URL shows suspicious indicators (redirects, strange hostnames, " +
			"or suspicious content). It may be used for phishing or other social-engineering attacks.",
		Tips: []string{
			"Do not enter credentials on the site.",
			"Verify the URL carefully for misspellings or extra characters.",
			"Cross-check the link with other online scanners before interacting.",
		},
		Severity: "high",
	},
	core.CategoryHarmless: {
		Title: "No Threats Detected",
		Explanation: "Security engines did not report malicious or suspicious indicators for this URL. " +
			"This does not guarantee absolute safety.",
		Tips: []string{
			"Proceed cautiously on login pages even if a scan is clean.",
			"Avoid downloading files from unknown subpages.",
			"Bookmark trusted sites and use bookmarks to visit them.",
		},
		Severity: "low",
	},
	core.CategoryUnrated: {
		Title: "Unrated / Unknown",
		Explanation: "This URL hasn't been analyzed by security vendors (or results are unavailable). " +
			"Unrated does not mean safe.",
		Tips: []string{
			"Be cautious when opening unrated sites.",
			"Only proceed if you trust the sender/source.",
			"Use sandboxing / virtual machine if you must interact with unknown content.",
		},
		Severity: "medium",
	},
}

// Lookup returns the fixed guidance for a category, defaulting to unrated
func Lookup(category core.RiskCategory) core.ThreatInfo {
	if info, ok := catalog[category]; ok {
		return info
	}
	return catalog[core.CategoryUnrated]
}
