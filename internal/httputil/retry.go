package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryConfig controls how many times a request is sent. MaxAttempts <= 1
// means a single attempt with no backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var SingleAttempt = RetryConfig{MaxAttempts: 1}

var DefaultBackoff = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// WithAttempts returns a config that makes n attempts, using the default
// backoff delays when more than one attempt is requested.
func WithAttempts(n int) RetryConfig {
	if n <= 1 {
		return SingleAttempt
	}
	cfg := DefaultBackoff
	cfg.MaxAttempts = n
	return cfg
}

// Do executes an HTTP request, retrying transport errors and 5xx responses
// when cfg allows more than one attempt. buildReq is called for every attempt.
func Do(ctx context.Context, client *http.Client, cfg RetryConfig, buildReq func() (*http.Request, error)) (*http.Response, error) {
	return do(ctx, client, cfg, buildReq, false)
}

// do is Do; with keepLast the final 5xx response is returned to the caller
// instead of being turned into an error.
func do(ctx context.Context, client *http.Client, cfg RetryConfig, buildReq func() (*http.Request, error), keepLast bool) (*http.Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil && (resp.StatusCode < 500 || (keepLast && attempt == cfg.MaxAttempts)) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		fmt.Printf("[RETRY] Attempt %d/%d failed: %v, retrying in %s\n",
			attempt, cfg.MaxAttempts, lastErr, delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	if cfg.MaxAttempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

// GetJSON sends a GET to url and decodes the response body into out,
// whatever the status code. 5xx responses are still retried per cfg, but the
// last one is decoded like any other. The status code is returned for the
// caller to interpret alongside the decoded payload.
func GetJSON(ctx context.Context, client *http.Client, cfg RetryConfig, url string, out any) (int, error) {
	resp, err := do(ctx, client, cfg, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, true)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode (HTTP %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
