package reputation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/adapters/safebrowsing"
	"github.com/keyurpatil06/phishlens/internal/adapters/virustotal"
)

// newVTServer answers submissions for any URL and reports the given URLs
// as malicious on the analysis fetch
func newVTServer(t *testing.T, malicious map[string]bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			target := r.PostForm.Get("url")
			// Encode the verdict into the analysis ID so the fetch can
			// answer without shared state.
			verdict := "clean"
			if malicious[target] {
				verdict = "bad"
			}
			fmt.Fprintf(w, `{"data":{"id":%q}}`, verdict)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/bad") {
			fmt.Fprint(w, `{"data":{"attributes":{"status":"completed","stats":{"malicious":7,"harmless":3}}}}`)
		} else {
			fmt.Fprint(w, `{"data":{"attributes":{"status":"completed","stats":{"harmless":10}}}}`)
		}
	}))
}

func TestCheckMergesBothServices(t *testing.T) {
	gsbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"matches":[{"threat":{"url":"http://gsb-hit.example/"}}]}`)
	}))
	defer gsbServer.Close()

	vtServer := newVTServer(t, map[string]bool{"http://vt-hit.example/": true})
	defer vtServer.Close()

	gsb := safebrowsing.NewClient("gsb-key", gsbServer.URL, zap.NewNop())
	vt := virustotal.NewClient("vt-key", vtServer.URL, 3, time.Millisecond, zap.NewNop())
	checker := NewChecker(gsb, vt, zap.NewNop())

	urls := []string{"http://gsb-hit.example/", "http://vt-hit.example/", "http://clean.example/"}
	results, err := checker.Check(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].SafeBrowsing)
	assert.False(t, results[0].VirusTotal)
	assert.True(t, results[0].Flagged)

	assert.False(t, results[1].SafeBrowsing)
	assert.True(t, results[1].VirusTotal)
	assert.True(t, results[1].Flagged)

	assert.False(t, results[2].Flagged)
}

func TestCheckWithoutCredentials(t *testing.T) {
	gsb := safebrowsing.NewClient("", "http://unused", zap.NewNop())
	vt := virustotal.NewClient("", "http://unused", 3, time.Millisecond, zap.NewNop())
	checker := NewChecker(gsb, vt, zap.NewNop())

	results, err := checker.Check(context.Background(), []string{"http://x.example/"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Flagged)
}

func TestCheckCapsVirusTotalBatch(t *testing.T) {
	var submissions int
	vtServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			submissions++
			fmt.Fprint(w, `{"data":{"id":"clean"}}`)
			return
		}
		fmt.Fprint(w, `{"data":{"attributes":{"status":"completed","stats":{"harmless":10}}}}`)
	}))
	defer vtServer.Close()

	gsb := safebrowsing.NewClient("", "http://unused", zap.NewNop())
	vt := virustotal.NewClient("vt-key", vtServer.URL, 3, time.Millisecond, zap.NewNop())
	checker := NewChecker(gsb, vt, zap.NewNop())

	urls := make([]string, 15)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://u%d.example/", i)
	}
	results, err := checker.Check(context.Background(), urls)
	require.NoError(t, err)
	assert.Len(t, results, 15)
	assert.Equal(t, 10, submissions)
}
