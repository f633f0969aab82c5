package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func testHarvestConfig(baseURL string) *pipeline.HarvestConfig {
	return &pipeline.HarvestConfig{
		BaseURL:           baseURL,
		UserAgent:         "takeforge-test/1.0",
		RequestTimeout:    250 * time.Millisecond,
		MaxAttempts:       3,
		TimeoutBackoff:    5 * time.Millisecond,
		ConnectBackoff:    5 * time.Millisecond,
		RetryAfterFloor:   10 * time.Millisecond,
		MinRequestSpacing: time.Millisecond,
		PageSize:          100,
		PageDelay:         time.Millisecond,
		DetailDelay:       time.Millisecond,
		CommentsPerPost:   10,
	}
}

func TestFetcherSuccess(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testHarvestConfig(server.URL))
	payload, err := fetcher.FetchJSON(context.Background(), server.URL, url.Values{"q": {"hot take"}})
	require.NoError(t, err)
	require.NotNil(t, payload)

	root, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, root, "data")
	assert.Equal(t, "takeforge-test/1.0", gotUA.Load())
}

func TestFetcherRateLimitedThenSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testHarvestConfig(server.URL))
	start := time.Now()
	payload, err := fetcher.FetchJSON(context.Background(), server.URL, nil)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, int32(2), calls.Load())
	// No Retry-After header, so the configured floor applies
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestFetcherNonSuccessStatusNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHarvestConfig(server.URL))
	payload, err := fetcher.FetchJSON(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, int32(1), calls.Load(), "unexpected status must not be retried")
}

func TestFetcherExhaustsAttemptsOnTimeout(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(time.Second)
	}))
	defer server.Close()

	config := testHarvestConfig(server.URL)
	config.RequestTimeout = 20 * time.Millisecond
	fetcher := NewFetcher(config)

	payload, err := fetcher.FetchJSON(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcherConnectionRefused(t *testing.T) {
	// A closed server refuses connections
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	fetcher := NewFetcher(testHarvestConfig(target))
	payload, err := fetcher.FetchJSON(context.Background(), target, nil)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestFetcherMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testHarvestConfig(server.URL))
	payload, err := fetcher.FetchJSON(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestFetcherContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	fetcher := NewFetcher(testHarvestConfig(server.URL))
	_, err := fetcher.FetchJSON(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfterParsing(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent uses floor", "", 10 * time.Second},
		{"valid header", "25", 25 * time.Second},
		{"garbage uses floor", "soon", 10 * time.Second},
		{"negative uses floor", "-5", 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, retryAfter(resp, 10*time.Second))
		})
	}
}
