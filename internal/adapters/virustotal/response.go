package virustotal

import "github.com/keyurpatil06/phishlens/internal/core"

// submissionResponse is the body returned by POST /urls
type submissionResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// analysisResponse is the body returned by GET /analyses/{id}. The engine
// counters appear under one of two known shapes: "stats" on current API
// responses, "last_analysis_stats" on older ones. Both are modeled here and
// resolved by a single normalization step.
type analysisResponse struct {
	Data struct {
		Attributes struct {
			Status            string        `json:"status"`
			Stats             *statsPayload `json:"stats"`
			LastAnalysisStats *statsPayload `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// statsPayload holds the raw engine counters. Pointer fields distinguish
// "absent" from zero so missing counters can default cleanly.
type statsPayload struct {
	Harmless   *int `json:"harmless"`
	Malicious  *int `json:"malicious"`
	Suspicious *int `json:"suspicious"`
	Timeout    *int `json:"timeout"`
	Undetected *int `json:"undetected"`
}

// normalizeStats resolves the response shape and defaults every missing
// counter to zero
func (r *analysisResponse) normalizeStats() core.VerdictStats {
	payload := r.Data.Attributes.Stats
	if payload == nil {
		payload = r.Data.Attributes.LastAnalysisStats
	}
	if payload == nil {
		return core.VerdictStats{}
	}
	return core.VerdictStats{
		Harmless:   orZero(payload.Harmless),
		Malicious:  orZero(payload.Malicious),
		Suspicious: orZero(payload.Suspicious),
		Timeout:    orZero(payload.Timeout),
		Undetected: orZero(payload.Undetected),
	}
}

func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
