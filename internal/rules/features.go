package rules

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// DeriveURLFeatures computes the structural properties of one URL. Features
// are recomputed for every scan; nothing here is cached.
func DeriveURLFeatures(rawURL string) core.URLFeatures {
	features := core.URLFeatures{Raw: rawURL}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		features.Malformed = true
		return features
	}

	features.IsDataURI = strings.EqualFold(parsed.Scheme, "data")
	features.PathQueryLen = len(parsed.Path) + len(parsed.RawQuery)

	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if host == "" {
		features.Malformed = true
		return features
	}

	// Normalize to the ASCII (punycode) form so the xn-- marker and the
	// brand comparisons see what a resolver would see.
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	features.Hostname = host
	features.Punycode = hasPunycodeLabel(host)

	if suffix, _ := publicsuffix.PublicSuffix(host); suffix != "" {
		features.TLD = suffix
	}
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		features.RegistrableDomain = registrable
	}

	return features
}

// hasPunycodeLabel reports whether any DNS label carries the IDN marker
func hasPunycodeLabel(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

// editDistance computes the Levenshtein distance between two strings,
// case-insensitively. Used for the brand typosquat check.
func editDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
