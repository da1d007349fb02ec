package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client performs batch URL lookups against the Google Safe Browsing v4 API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates a new Safe Browsing client
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// threatMatchesRequest is the lookup request body
type threatMatchesRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatEntry struct {
	URL string `json:"url"`
}

// threatMatchesResponse is the lookup response body
type threatMatchesResponse struct {
	Matches []struct {
		Threat threatEntry `json:"threat"`
	} `json:"matches"`
}

// FindThreats returns the subset of the given URLs that Safe Browsing flags.
// An absent credential yields an empty result set without error.
func (c *Client) FindThreats(ctx context.Context, urls []string) ([]string, error) {
	if c.apiKey == "" || len(urls) == 0 {
		return nil, nil
	}

	reqBody := threatMatchesRequest{}
	reqBody.Client.ClientID = "phishlens"
	reqBody.Client.ClientVersion = "1.0.0"
	reqBody.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	for _, u := range urls {
		reqBody.ThreatInfo.ThreatEntries = append(reqBody.ThreatInfo.ThreatEntries, threatEntry{URL: u})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup request: %w", err)
	}

	endpoint := c.baseURL + "/v4/threatMatches:find?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lookup request failed: status %d", resp.StatusCode)
	}

	var matches threatMatchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	flagged := make(map[string]struct{}, len(matches.Matches))
	for _, m := range matches.Matches {
		flagged[m.Threat.URL] = struct{}{}
	}

	var result []string
	for _, u := range urls {
		if _, ok := flagged[u]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}
