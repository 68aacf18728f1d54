package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/regiq/regiq/config"
	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/metrics"
)

const acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8"

// Fetcher retrieves raw feed documents from agency endpoints with retry.
// Transient failures (transport errors, 429, 5xx) are retried with
// exponential backoff; any other non-2xx response is fatal immediately.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

// NewFetcher creates a feed fetcher with the given per-request timeout
func NewFetcher(timeout time.Duration, userAgent string, maxAttempts int) *Fetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

// Fetch performs the HTTP GET for one feed and returns the raw body plus
// the Content-Type header for the parser to interpret.
func (f *Fetcher) Fetch(ctx context.Context, fc config.FeedConfig) (body []byte, contentType string, err error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.backoff(attempt - 1)
			logger.Debug("Retrying feed fetch",
				"agency", fc.Agency,
				"source", fc.Source,
				"attempt", attempt,
				"delay", delay,
			)
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(delay):
			}
		}

		var retryable bool
		body, contentType, retryable, lastErr = f.attempt(ctx, fc)
		if lastErr == nil {
			metrics.RecordFeedFetch(fc.Source, "success", attempt)
			return body, contentType, nil
		}

		logger.Warn("Feed fetch attempt failed",
			"agency", fc.Agency,
			"source", fc.Source,
			"attempt", attempt,
			"error", lastErr,
		)

		if !retryable {
			metrics.RecordFeedFetch(fc.Source, "permanent_error", attempt)
			return nil, "", apperrors.FeedError{Agency: fc.Agency, URL: fc.URL, Attempts: attempt, Err: lastErr}
		}
	}

	metrics.RecordFeedFetch(fc.Source, "exhausted", f.maxAttempts)
	return nil, "", apperrors.FeedError{Agency: fc.Agency, URL: fc.URL, Attempts: f.maxAttempts, Err: lastErr}
}

// attempt performs a single GET; retryable reports whether the failure is
// worth another try (transport error, 429, or 5xx).
func (f *Fetcher) attempt(ctx context.Context, fc config.FeedConfig) (body []byte, contentType string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fc.URL, http.NoBody)
	if err != nil {
		return nil, "", false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", true, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, "", retryable, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", true, fmt.Errorf("read body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), false, nil
}
