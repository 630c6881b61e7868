package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher issues a plain GET. Hosts with bot protection may reject it.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewHTTPFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	slog.Info("Requesting feed", "url", url, "timeout", f.timeout)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("Feed response received", "url", url, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}

	return string(data), nil
}
