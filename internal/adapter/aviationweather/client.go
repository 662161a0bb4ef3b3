package aviationweather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Client implements domain.Fetcher against the aviationweather.gov text
// product endpoint. Requests are spaced by a rate limiter so on-demand
// refreshes cannot hammer the upstream.
type Client struct {
	http    *resty.Client
	url     string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a client for the given bulletin URL. A minInterval of
// zero disables rate limiting.
func NewClient(url string, timeout, minInterval time.Duration, logger *slog.Logger) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/plain").
		SetHeader("User-Agent", "winds-aloft-service")

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &Client{
		http:    client,
		url:     url,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// FetchReport returns the raw bulletin text. Any transport error or non-200
// status is returned as an error.
func (c *Client) FetchReport(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		return "", fmt.Errorf("winds aloft request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("winds aloft API error: status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	c.logger.Debug("winds aloft bulletin fetched",
		"url", c.url,
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)
	return resp.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
