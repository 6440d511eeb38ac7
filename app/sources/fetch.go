// Package sources implements the content collectors the digest is
// built from: arXiv listings, GitHub Trending, HuggingFace, tech blog
// RSS feeds, Twitter and YouTube.
package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	fetchMaxAttempts = 3
	fetchMaxDelay    = 30 * time.Second
)

// Fetcher is a shared HTTP helper with capped exponential retry
// backoff (1s, 2s, 4s... capped at 30s).
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Get fetches a URL with retries. Extra headers are optional.
func (f *Fetcher) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryDelay(attempt - 1)
			slog.Debug("Retrying fetch", "url", url, "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := f.fetch(ctx, url, header)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", fetchMaxAttempts, lastErr)
}

func (f *Fetcher) fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

func retryDelay(retryCount int) time.Duration {
	delay := time.Duration(1<<uint(retryCount-1)) * time.Second
	if delay > fetchMaxDelay {
		delay = fetchMaxDelay
	}
	return delay
}
