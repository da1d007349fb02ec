package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScorer struct{}

func (fakeScorer) ScoreURL(rawURL string) RuleCheckResult {
	return RuleCheckResult{Score: 0, Level: RiskLow}
}

func (fakeScorer) ScoreEmail(features EmailFeatures) RuleCheckResult {
	return RuleCheckResult{Score: 9, Level: RiskLow, Reasons: []string{"Urgent/pressure wording detected."}}
}

type fakeVerdicts struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*VerdictStats
	errs    map[string]error
}

func (f *fakeVerdicts) SubmitAndAwaitVerdict(ctx context.Context, targetURL string) (*VerdictStats, error) {
	f.mu.Lock()
	f.calls = append(f.calls, targetURL)
	f.mu.Unlock()
	if err, ok := f.errs[targetURL]; ok {
		return nil, err
	}
	if stats, ok := f.results[targetURL]; ok {
		return stats, nil
	}
	return &VerdictStats{Harmless: 10}, nil
}

type fakeExtractor struct {
	features EmailFeatures
	err      error
}

func (f *fakeExtractor) Parse(raw string) (EmailFeatures, error) {
	return f.features, f.err
}

func (f *fakeExtractor) ExtractURLs(text string) []string {
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	payloads []json.RawMessage
}

func (f *fakeQueue) Enqueue(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.payloads = append(f.payloads, data)
	f.mu.Unlock()
	return nil
}

func newTestService(verdicts *fakeVerdicts, extractor *fakeExtractor, queue *fakeQueue) *ScanService {
	params := ScanServiceParams{
		Scorer:        fakeScorer{},
		Verdicts:      verdicts,
		Extractor:     extractor,
		Logger:        zap.NewNop(),
		ScanTimeout:   5 * time.Second,
		HasCredential: true,
	}
	if queue != nil {
		params.Queue = queue
		params.CaptureEnabled = true
	}
	return NewScanService(params)
}

func TestScanURLRequiresTarget(t *testing.T) {
	svc := newTestService(&fakeVerdicts{}, &fakeExtractor{}, nil)

	_, err := svc.ScanURL(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingTarget)
}

func TestScanURLRequiresCredential(t *testing.T) {
	svc := NewScanService(ScanServiceParams{
		Scorer:      fakeScorer{},
		Verdicts:    &fakeVerdicts{},
		Extractor:   &fakeExtractor{},
		Logger:      zap.NewNop(),
		ScanTimeout: time.Second,
	})

	_, err := svc.ScanURL(context.Background(), "http://example.com/")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestScanURLSuccess(t *testing.T) {
	verdicts := &fakeVerdicts{results: map[string]*VerdictStats{
		"http://bad.example/": {Harmless: 1, Malicious: 9},
	}}
	svc := newTestService(verdicts, &fakeExtractor{}, nil)

	result, err := svc.ScanURL(context.Background(), "http://bad.example/")
	require.NoError(t, err)
	assert.Equal(t, 90, result.RemoteScore)
	assert.Equal(t, CategoryMalicious, result.RiskCategory)
	assert.True(t, result.Malicious)
	assert.Equal(t, RiskHigh, result.Overall)
}

func TestScanURLVerdictFailureIsNotFatal(t *testing.T) {
	verdicts := &fakeVerdicts{errs: map[string]error{
		"http://x.example/": errors.New("analysis timed out after submission"),
	}}
	svc := newTestService(verdicts, &fakeExtractor{}, nil)

	result, err := svc.ScanURL(context.Background(), "http://x.example/")
	require.NoError(t, err)
	assert.Contains(t, result.Error, "timed out")
	assert.Nil(t, result.Stats)
	assert.Equal(t, CategoryUnrated, result.RiskCategory)
}

func TestScanEmailFansOutPerURL(t *testing.T) {
	extractor := &fakeExtractor{features: EmailFeatures{
		FromEmail: "a@example.com",
		BodyText:  "two links",
		Links: []Link{
			{Href: "http://good.example/"},
			{Href: "http://bad.example/"},
		},
	}}
	verdicts := &fakeVerdicts{
		results: map[string]*VerdictStats{
			"http://good.example/": {Harmless: 10},
			"http://bad.example/":  {Malicious: 5},
		},
	}
	svc := newTestService(verdicts, extractor, nil)

	result, err := svc.ScanEmail(context.Background(), "raw message")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalURLs)
	require.Len(t, result.Results, 2)

	// Results keep the discovery order despite concurrent assessment
	assert.Equal(t, "http://good.example/", result.Results[0].URL)
	assert.Equal(t, "http://bad.example/", result.Results[1].URL)
	assert.True(t, result.HasMalicious)
}

func TestScanEmailOneFailureDoesNotAbortOthers(t *testing.T) {
	extractor := &fakeExtractor{features: EmailFeatures{
		FromEmail: "a@example.com",
		Links: []Link{
			{Href: "http://broken.example/"},
			{Href: "http://fine.example/"},
		},
	}}
	verdicts := &fakeVerdicts{
		errs:    map[string]error{"http://broken.example/": errors.New("boom")},
		results: map[string]*VerdictStats{"http://fine.example/": {Harmless: 3}},
	}
	svc := newTestService(verdicts, extractor, nil)

	result, err := svc.ScanEmail(context.Background(), "raw message")
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.NotEmpty(t, result.Results[0].Error)
	assert.Empty(t, result.Results[1].Error)
	assert.Equal(t, CategoryHarmless, result.Results[1].RiskCategory)
}

func TestScanEmailSkipsDataURIAndDuplicateLinks(t *testing.T) {
	extractor := &fakeExtractor{features: EmailFeatures{
		FromEmail: "a@example.com",
		Links: []Link{
			{Href: "http://a.example/"},
			{Href: "http://a.example/"},
			{Href: "data:text/html;base64,x", IsDataURI: true},
		},
	}}
	verdicts := &fakeVerdicts{}
	svc := newTestService(verdicts, extractor, nil)

	result, err := svc.ScanEmail(context.Background(), "raw message")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalURLs)
	assert.Equal(t, []string{"http://a.example/"}, verdicts.calls)
}

func TestScanEmailUnparsableFallsBackToRawText(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("not an RFC 5322 message")}
	svc := newTestService(&fakeVerdicts{}, extractor, nil)

	result, err := svc.ScanEmail(context.Background(), "just some text")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalURLs)
}

func TestScanURLCaptureEnqueued(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestService(&fakeVerdicts{}, &fakeExtractor{}, queue)

	_, err := svc.ScanURL(context.Background(), "http://example.com/")
	require.NoError(t, err)

	require.Len(t, queue.payloads, 1)
	var event CaptureEvent
	require.NoError(t, json.Unmarshal(queue.payloads[0], &event))
	assert.Equal(t, "url", event.Kind)
	assert.Equal(t, "http://example.com/", event.Target)
	assert.NotEmpty(t, event.ID)
}

func TestCrossCheckRequiresURLs(t *testing.T) {
	svc := newTestService(&fakeVerdicts{}, &fakeExtractor{}, nil)

	_, err := svc.CrossCheck(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingTarget)
}
