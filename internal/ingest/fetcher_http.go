package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// HTTPFetcher is a plain stdlib-transport Fetcher with retries and a
// ticker-based rate limit. The colly-backed fetcher is the default for
// page scraping; this one backs the JSON API client and tools that need
// a raw response body.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string

	maxRetries int
	limiter    *time.Ticker
}

// NewHTTPFetcher builds a fetcher from the source fetch configuration.
func NewHTTPFetcher(cfg FetchConfig) *HTTPFetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1.0
	}

	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}

	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		UserAgent:  cfg.UserAgent,
		maxRetries: retries,
		limiter:    time.NewTicker(time.Duration(float64(time.Second) / rps)),
	}
}

// retryableStatus reports whether a status code is worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetch implements the Fetcher interface. Transport errors and retryable
// status codes are retried with exponential backoff plus jitter; the final
// failure is reported as a FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*FetchedDocument, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.limiter.C:
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			jitter := time.Duration(rand.Intn(100)) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", f.UserAgent)
		req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")

		resp, err := f.Client.Do(req)
		if err != nil {
			lastErr = &FetchError{URL: url, Err: err}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return &FetchedDocument{
				URL:         url,
				StatusCode:  resp.StatusCode,
				ContentType: resp.Header.Get("Content-Type"),
				Body:        resp.Body,
				FetchedAt:   time.Now(),
				Headers:     resp.Header,
			}, nil
		}

		resp.Body.Close()
		lastErr = &FetchError{URL: url, StatusCode: resp.StatusCode}
		if !retryableStatus(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
