package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

const maxResponseBytes = 16 * 1024 * 1024

// Fetcher issues single JSON requests with bounded retries and adaptive
// waiting on throttling. Expected failure classes never surface as errors:
// the payload is simply nil ("unavailable") and the caller decides what to
// skip. Only context cancellation and request construction failures return
// an error.
type Fetcher struct {
	client *http.Client
	pacer  *rate.Limiter
	config *pipeline.HarvestConfig
	logger zerolog.Logger
}

// NewFetcher creates a fetcher from harvest configuration
func NewFetcher(config *pipeline.HarvestConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		pacer:  rate.NewLimiter(rate.Every(config.MinRequestSpacing), 1),
		config: config,
		logger: logging.GetLogger("fetcher"),
	}
}

// FetchJSON fetches a JSON endpoint, retrying up to MaxAttempts times on
// network failures and waiting out HTTP 429 responses. Returns (nil, nil)
// when the resource is unavailable.
func (f *Fetcher) FetchJSON(ctx context.Context, endpoint string, params url.Values) (any, error) {
	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		if err := f.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
		}
		if params != nil {
			req.URL.RawQuery = params.Encode()
		}
		req.Header.Set("User-Agent", f.config.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			backoff := f.config.ConnectBackoff
			if isTimeout(err) {
				backoff = f.config.TimeoutBackoff
				f.logger.Warn().
					Str("url", endpoint).
					Int("attempt", attempt).
					Dur("backoff", backoff).
					Msg("Request timed out, retrying")
			} else {
				f.logger.Warn().
					Err(err).
					Str("url", endpoint).
					Int("attempt", attempt).
					Dur("backoff", backoff).
					Msg("Connection failed, retrying")
			}
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp, f.config.RetryAfterFloor)
			resp.Body.Close()
			f.logger.Warn().
				Str("url", endpoint).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Rate limited, waiting")
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			f.logger.Warn().
				Str("url", endpoint).
				Int("status", resp.StatusCode).
				Msg("Unexpected status, skipping")
			return nil, nil
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if err != nil {
			f.logger.Warn().
				Err(err).
				Str("url", endpoint).
				Int("attempt", attempt).
				Msg("Failed to read response body, retrying")
			if err := sleepCtx(ctx, f.config.TimeoutBackoff); err != nil {
				return nil, err
			}
			continue
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			f.logger.Warn().
				Err(err).
				Str("url", endpoint).
				Msg("Malformed JSON payload, skipping")
			return nil, nil
		}
		return payload, nil
	}

	f.logger.Warn().
		Str("url", endpoint).
		Int("attempts", f.config.MaxAttempts).
		Msg("All attempts exhausted")
	return nil, nil
}

// retryAfter reads the server-suggested wait, with a floor when absent or
// unparsable
func retryAfter(resp *http.Response, floor time.Duration) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return floor
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return floor
	}
	return time.Duration(seconds) * time.Second
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// sleepCtx blocks for d unless the context ends first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
