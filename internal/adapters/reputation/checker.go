package reputation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/safebrowsing"
	"github.com/keyurpatil06/phishlens/internal/adapters/virustotal"
	"github.com/keyurpatil06/phishlens/internal/core"
)

// vtBatchLimit caps how many URLs get a VirusTotal quick check per batch
const vtBatchLimit = 10

// Checker fans a batch of URLs out to Safe Browsing and VirusTotal and
// merges the per-URL flags. Each service with an absent credential simply
// contributes an empty result set.
type Checker struct {
	gsb    *safebrowsing.Client
	vt     *virustotal.Client
	logger *zap.Logger
}

// NewChecker creates a new reputation checker
func NewChecker(gsb *safebrowsing.Client, vt *virustotal.Client, logger *zap.Logger) *Checker {
	return &Checker{
		gsb:    gsb,
		vt:     vt,
		logger: logger,
	}
}

// Check runs both lookups concurrently and returns one result per input URL
func (c *Checker) Check(ctx context.Context, urls []string) ([]core.ReputationResult, error) {
	var (
		wg         sync.WaitGroup
		gsbFlagged []string
		vtFlagged  []string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		flagged, err := c.gsb.FindThreats(ctx, urls)
		if err != nil {
			c.logger.Warn("Safe Browsing lookup failed", zap.Error(err))
			return
		}
		gsbFlagged = flagged
	}()
	go func() {
		defer wg.Done()
		vtFlagged = c.virusTotalFlags(ctx, urls)
	}()
	wg.Wait()

	gsbSet := toSet(gsbFlagged)
	vtSet := toSet(vtFlagged)

	results := make([]core.ReputationResult, 0, len(urls))
	for _, u := range urls {
		_, gsb := gsbSet[u]
		_, vt := vtSet[u]
		results = append(results, core.ReputationResult{
			URL:          u,
			SafeBrowsing: gsb,
			VirusTotal:   vt,
			Flagged:      gsb || vt,
		})
	}
	return results, nil
}

// virusTotalFlags runs a capped sequence of quick verdicts. Individual
// failures are skipped, matching the per-URL isolation of the scan path.
func (c *Checker) virusTotalFlags(ctx context.Context, urls []string) []string {
	if !c.vt.Enabled() {
		return nil
	}

	limit := len(urls)
	if limit > vtBatchLimit {
		limit = vtBatchLimit
	}

	var flagged []string
	for _, u := range urls[:limit] {
		stats, err := c.vt.QuickVerdict(ctx, u)
		if err != nil {
			c.logger.Debug("VirusTotal quick check failed",
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		if stats.Malicious > 0 {
			flagged = append(flagged, u)
		}
	}
	return flagged
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
