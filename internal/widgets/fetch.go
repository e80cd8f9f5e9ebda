package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/reportdeck/backend/internal/infrastructure/config"
	"github.com/reportdeck/backend/internal/infrastructure/resilience"
)

// feedDocument is the JSON layout a feed endpoint serves.
type feedDocument struct {
	Items []Item `json:"items"`
}

// HTTPFetcher fetches feeds over HTTP with retries, a request-rate ceiling,
// and a circuit breaker. One fetcher is shared by every feed instance.
type HTTPFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewHTTPFetcher builds the shared feed client from configuration.
func NewHTTPFetcher(cfg config.FeedConfig) *HTTPFetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(retryClient.RetryMax).
		SetRetryWaitTime(retryClient.RetryWaitMin).
		SetRetryMaxWaitTime(retryClient.RetryWaitMax).
		SetHeader("User-Agent", "ReportDeck/1.0").
		SetHeader("Accept", "application/json")
	client.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps := cfg.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &HTTPFetcher{
		client:  client,
		limiter: limiter,
		breaker: resilience.New(resilience.Config{
			Name:      "feed",
			Threshold: 5,
			Cooldown:  30 * time.Second,
		}),
	}
}

// Fetch retrieves and decodes one feed document.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]Item, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("feed rate limit: %w", err)
	}

	var doc feedDocument
	err := f.breaker.Execute(func() error {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("feed responded %s", resp.Status())
		}
		if err := sonic.Unmarshal(resp.Body(), &doc); err != nil {
			return fmt.Errorf("decode feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}
