package virustotal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// ErrAnalysisTimeout is returned when every poll attempt was consumed
// without the analysis reaching a terminal status. It is an error result,
// never a zero-valued stats object.
var ErrAnalysisTimeout = errors.New("analysis did not complete in time")

// SessionState tracks one analysis session through the submit/poll protocol
type SessionState int

const (
	StateSubmitted SessionState = iota
	StatePolling
	StateCompleted
	StateTimedOut
	StateFailed
)

// String returns the state name for logging
func (s SessionState) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Client submits URLs to the VirusTotal v3 API and polls for verdicts
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollAttempts int
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewClient creates a new VirusTotal client
func NewClient(apiKey, baseURL string, pollAttempts int, pollInterval time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		pollAttempts: pollAttempts,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// session is the per-URL state of one submit/poll run. Sessions are owned by
// a single goroutine and share nothing.
type session struct {
	targetURL  string
	analysisID string
	state      SessionState
	attempt    int
}

// SubmitAndAwaitVerdict submits a URL for analysis and polls until the
// analysis completes, the attempt budget runs out, or the context is
// cancelled. Cancellation is reported the same way as a poll timeout.
func (c *Client) SubmitAndAwaitVerdict(ctx context.Context, targetURL string) (*core.VerdictStats, error) {
	sess := &session{targetURL: targetURL, state: StateSubmitted}

	if err := c.submit(ctx, sess); err != nil {
		sess.state = StateFailed
		return nil, err
	}

	sess.state = StatePolling
	stats, err := c.poll(ctx, sess)
	if err != nil {
		return nil, err
	}

	sess.state = StateCompleted
	c.logger.Debug("Analysis completed",
		zap.String("url", sess.targetURL),
		zap.String("analysis_id", sess.analysisID),
		zap.Int("attempts", sess.attempt))
	return stats, nil
}

// submit issues the submission request. Submission failures are terminal:
// without an analysis identifier there is nothing to poll.
func (c *Client) submit(ctx context.Context, sess *session) error {
	form := url.Values{}
	form.Set("url", sess.targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to submit URL: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var submission submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&submission); err != nil {
		return fmt.Errorf("failed to decode submission response: %w", err)
	}
	if submission.Data.ID == "" {
		return errors.New("no analysis ID returned")
	}

	sess.analysisID = submission.Data.ID
	return nil
}

// poll fetches the analysis status up to the attempt budget. A transport
// failure on one attempt is treated as "not yet complete" and consumes the
// attempt; only an observed "completed" status ends the loop early.
func (c *Client) poll(ctx context.Context, sess *session) (*core.VerdictStats, error) {
	for sess.attempt = 1; sess.attempt <= c.pollAttempts; sess.attempt++ {
		analysis, err := c.fetchAnalysis(ctx, sess.analysisID)
		if err != nil {
			if ctx.Err() != nil {
				sess.state = StateTimedOut
				return nil, ErrAnalysisTimeout
			}
			c.logger.Debug("Poll attempt failed",
				zap.String("analysis_id", sess.analysisID),
				zap.Int("attempt", sess.attempt),
				zap.Error(err))
		} else if analysis.Data.Attributes.Status == "completed" {
			stats := analysis.normalizeStats()
			return &stats, nil
		}

		if sess.attempt == c.pollAttempts {
			break
		}
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			sess.state = StateTimedOut
			return nil, ErrAnalysisTimeout
		}
	}

	sess.state = StateTimedOut
	return nil, ErrAnalysisTimeout
}

// fetchAnalysis performs one poll request
func (c *Client) fetchAnalysis(ctx context.Context, analysisID string) (*analysisResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analyses/"+analysisID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poll request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("poll request failed: status %d", resp.StatusCode)
	}

	var analysis analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &analysis, nil
}

// QuickVerdict submits a URL and fetches the analysis once, without waiting
// for completion. Used by the batch reputation cross-check, where partial
// stats from an in-flight analysis are acceptable.
func (c *Client) QuickVerdict(ctx context.Context, targetURL string) (*core.VerdictStats, error) {
	sess := &session{targetURL: targetURL, state: StateSubmitted}
	if err := c.submit(ctx, sess); err != nil {
		return nil, err
	}
	analysis, err := c.fetchAnalysis(ctx, sess.analysisID)
	if err != nil {
		return nil, err
	}
	stats := analysis.normalizeStats()
	return &stats, nil
}

// Enabled reports whether a scanning credential was configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}
