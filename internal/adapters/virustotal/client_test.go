package virustotal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

const submissionBody = `{"data":{"type":"analysis","id":"abc123"}}`

func analysisBody(status, statsKey string) string {
	return fmt.Sprintf(`{"data":{"attributes":{"status":%q,%q:{"harmless":60,"malicious":5,"suspicious":2}}}}`,
		status, statsKey)
}

func newTestClient(serverURL string, attempts int) *Client {
	return NewClient("test-key", serverURL, attempts, time.Millisecond, zap.NewNop())
}

func TestSubmitAndAwaitVerdictCompletesAfterPolls(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-apikey"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/urls":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "http://example.com/", r.PostForm.Get("url"))
			fmt.Fprint(w, submissionBody)
		case r.Method == http.MethodGet && r.URL.Path == "/analyses/abc123":
			if atomic.AddInt32(&polls, 1) < 3 {
				fmt.Fprint(w, analysisBody("queued", "stats"))
			} else {
				fmt.Fprint(w, analysisBody("completed", "stats"))
			}
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20)
	stats, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, &core.VerdictStats{Harmless: 60, Malicious: 5, Suspicious: 2}, stats)
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestSubmitAndAwaitVerdictLegacyStatsShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, submissionBody)
			return
		}
		fmt.Fprint(w, analysisBody("completed", "last_analysis_stats"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5)
	stats, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Malicious)
	assert.Equal(t, 60, stats.Harmless)
	// Counters absent upstream default to zero
	assert.Equal(t, 0, stats.Timeout)
	assert.Equal(t, 0, stats.Undetected)
}

func TestSubmitAndAwaitVerdictTimeoutIsErrorNotZeroStats(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, submissionBody)
			return
		}
		atomic.AddInt32(&polls, 1)
		fmt.Fprint(w, analysisBody("queued", "stats"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 4)
	stats, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	assert.ErrorIs(t, err, ErrAnalysisTimeout)
	assert.Nil(t, stats)
	assert.Equal(t, int32(4), atomic.LoadInt32(&polls))
}

func TestSubmitFailureIsTerminal(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
			return
		}
		atomic.AddInt32(&polls, 1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5)
	_, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	// No analysis ID, nothing to poll
	assert.Equal(t, int32(0), atomic.LoadInt32(&polls))
}

func TestSubmitMissingAnalysisID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"type":"analysis"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5)
	_, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	assert.EqualError(t, err, "no analysis ID returned")
}

func TestPollTransportFailuresConsumeAttempts(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, submissionBody)
			return
		}
		atomic.AddInt32(&polls, 1)
		http.Error(w, "upstream hiccup", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.SubmitAndAwaitVerdict(context.Background(), "http://example.com/")
	assert.ErrorIs(t, err, ErrAnalysisTimeout)
	// Each failed poll consumed one attempt rather than aborting the session
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestCancelledContextReportsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, submissionBody)
			return
		}
		fmt.Fprint(w, analysisBody("queued", "stats"))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 100, 50*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	_, err := client.SubmitAndAwaitVerdict(ctx, "http://example.com/")
	assert.ErrorIs(t, err, ErrAnalysisTimeout)
}

func TestQuickVerdictSingleFetch(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, submissionBody)
			return
		}
		atomic.AddInt32(&polls, 1)
		fmt.Fprint(w, analysisBody("queued", "stats"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20)
	stats, err := client.QuickVerdict(context.Background(), "http://example.com/")
	require.NoError(t, err)
	// Partial stats from an in-flight analysis are acceptable here
	assert.Equal(t, 5, stats.Malicious)
	assert.Equal(t, int32(1), atomic.LoadInt32(&polls))
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "submitted", StateSubmitted.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "timed_out", StateTimedOut.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestEnabled(t *testing.T) {
	assert.True(t, newTestClient("http://unused", 1).Enabled())
	assert.False(t, NewClient("", "http://unused", 1, time.Millisecond, zap.NewNop()).Enabled())
}
