// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/breaker"
)

const (
	// maxBodySize bounds how much of any provider response is read.
	maxBodySize = 4 << 20

	defaultTimeout = 5 * time.Second
)

// statusError is a provider response the breaker should count as a failure.
type statusError struct {
	provider string
	status   int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.provider, e.status, e.body)
}

// fetcher performs rate-limited, breaker-guarded GET requests with
// exponential backoff on HTTP 429.
type fetcher struct {
	provider       string
	httpClient     *http.Client
	limiter        *rate.Limiter
	cb             *breaker.Breaker
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
}

type response struct {
	status int
	body   []byte
}

// get returns the status and body of reqURL. Client errors (4xx other than
// 429) come back as a response, not an error, so a missing title does not
// trip the breaker.
func (f *fetcher) get(ctx context.Context, reqURL string) (*response, error) {
	return breaker.Do(f.cb, func() (*response, error) {
		return f.getWithRetry(ctx, reqURL)
	})
}

func (f *fetcher) getWithRetry(ctx context.Context, reqURL string) (*response, error) {
	for attempt := 0; ; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, retryAfter, err := f.once(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		if resp.status != http.StatusTooManyRequests {
			if resp.status >= 500 {
				return nil, &statusError{provider: f.provider, status: resp.status, body: truncate(string(resp.body), 300)}
			}
			return resp, nil
		}
		if attempt >= f.maxRetries {
			return nil, &statusError{provider: f.provider, status: resp.status, body: "rate limit exceeded after " + strconv.Itoa(f.maxRetries) + " retries"}
		}

		delay := f.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter > 0 {
			delay = retryAfter
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (f *fetcher) once(ctx context.Context, reqURL string) (*response, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s request failed: %w", f.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s response: %w", f.provider, err)
	}

	var retryAfter time.Duration
	if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
	}
	return &response{status: resp.StatusCode, body: body}, retryAfter, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// redactKey hides the api_key query value in URLs that are logged.
func redactKey(u string) string {
	for _, param := range []string{"api_key=", "apikey="} {
		i := strings.Index(u, param)
		if i < 0 {
			continue
		}
		start := i + len(param)
		end := strings.IndexByte(u[start:], '&')
		if end < 0 {
			return u[:start] + "REDACTED"
		}
		u = u[:start] + "REDACTED" + u[start+end:]
	}
	return u
}
