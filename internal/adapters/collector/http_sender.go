package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// HTTPSender delivers capture events to a remote collector endpoint as
// JSON over HTTP with bearer-token authentication.
type HTTPSender struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *zap.Logger
}

// NewHTTPSender creates a new collector sender. baseURL is the collector
// root, e.g. https://collector.example.com.
func NewHTTPSender(baseURL string, token string, logger *zap.Logger) *HTTPSender {
	return &HTTPSender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/email-scan",
		token:      token,
		logger:     logger,
	}
}

// Send posts a single queued event to the collector
func (s *HTTPSender) Send(ctx context.Context, item core.QueueItem) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(item.Payload))
	if err != nil {
		return fmt.Errorf("failed to create collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
