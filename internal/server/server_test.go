package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

type stubScanner struct {
	urlResult   *core.URLAssessment
	urlErr      error
	emailResult *core.EmailAssessment
	emailErr    error
	crossResult []core.ReputationResult
	crossErr    error
}

func (s *stubScanner) ScanURL(ctx context.Context, targetURL string) (*core.URLAssessment, error) {
	if s.urlErr != nil {
		return nil, s.urlErr
	}
	return s.urlResult, nil
}

func (s *stubScanner) ScanEmail(ctx context.Context, rawEmail string) (*core.EmailAssessment, error) {
	if s.emailErr != nil {
		return nil, s.emailErr
	}
	return s.emailResult, nil
}

func (s *stubScanner) CrossCheck(ctx context.Context, urls []string) ([]core.ReputationResult, error) {
	if s.crossErr != nil {
		return nil, s.crossErr
	}
	return s.crossResult, nil
}

func doRequest(t *testing.T, scanner Scanner, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(scanner, zap.NewNop(), "127.0.0.1:0")
	router := srv.Router()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, &stubScanner{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScanURL(t *testing.T) {
	scanner := &stubScanner{urlResult: &core.URLAssessment{
		URL:          "http://x.example/",
		RiskCategory: core.CategoryMalicious,
		Malicious:    true,
		Overall:      core.RiskHigh,
	}}

	rec := doRequest(t, scanner, http.MethodPost, "/api/scan", `{"url":"http://x.example/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Type   string             `json:"type"`
		Result core.URLAssessment `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "url", resp.Type)
	assert.Equal(t, "http://x.example/", resp.Result.URL)
	assert.True(t, resp.Result.Malicious)
}

func TestScanEmail(t *testing.T) {
	scanner := &stubScanner{emailResult: &core.EmailAssessment{
		RuleCheck:    core.RuleCheckResult{Score: 9, Level: core.RiskLow},
		TotalURLs:    2,
		Results:      []core.URLAssessment{{URL: "http://a.example/"}, {URL: "http://b.example/"}},
		HasMalicious: false,
	}}

	rec := doRequest(t, scanner, http.MethodPost, "/api/scan", `{"email":"From: a@b.c\r\n\r\nhello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Type      string `json:"type"`
		TotalURLs int    `json:"totalUrls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "email", resp.Type)
	assert.Equal(t, 2, resp.TotalURLs)
}

func TestScanRequiresTarget(t *testing.T) {
	rec := doRequest(t, &stubScanner{}, http.MethodPost, "/api/scan", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no URL or email provided")
}

func TestScanRejectsBadJSON(t *testing.T) {
	rec := doRequest(t, &stubScanner{}, http.MethodPost, "/api/scan", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanMissingCredential(t *testing.T) {
	scanner := &stubScanner{urlErr: core.ErrMissingAPIKey}

	rec := doRequest(t, scanner, http.MethodPost, "/api/scan", `{"url":"http://x.example/"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing analysis service API key")
}

func TestCrossCheck(t *testing.T) {
	scanner := &stubScanner{crossResult: []core.ReputationResult{
		{URL: "http://x.example/", SafeBrowsing: true, Flagged: true},
	}}

	rec := doRequest(t, scanner, http.MethodPost, "/api/cross-check", `{"urls":["http://x.example/"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []core.ReputationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Flagged)
}

func TestCrossCheckRequiresURLs(t *testing.T) {
	rec := doRequest(t, &stubScanner{}, http.MethodPost, "/api/cross-check", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
