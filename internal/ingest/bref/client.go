// Package bref scrapes a basketball-reference team page into store records.
package bref

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the markup of one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageCache stores fetched markup between runs.
type PageCache interface {
	GetPage(ctx context.Context, url string) (string, bool, error)
	PutPage(ctx context.Context, url, body string) error
}

// FetchError reports a transport failure or a non-success response.
// StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher performs one plain GET per page with browser-like headers.
type HTTPFetcher struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   PageCache
	logger  *slog.Logger
}

// HTTPOptions tunes an HTTPFetcher.
type HTTPOptions struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
	Cache             PageCache
}

// NewHTTPFetcher creates a fetcher. Retries are disabled; a failed page is
// reported to the caller instead.
func NewHTTPFetcher(opts HTTPOptions, logger *slog.Logger) *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}

	return &HTTPFetcher{
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
		cache:   opts.Cache,
		logger:  logger.With("component", "fetcher"),
	}
}

// Fetch returns the page body, serving it from the page cache when possible.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		body, ok, err := f.cache.GetPage(ctx, url)
		if err != nil {
			f.logger.Warn("page cache read failed", "url", url, "error", err)
		} else if ok {
			f.logger.Debug("page cache hit", "url", url)
			return body, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	start := time.Now()
	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() > 299 {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode()}
	}

	body := res.String()
	f.logger.Info("fetched page", "url", url, "bytes", len(body), "elapsed", time.Since(start))

	if f.cache != nil {
		if err := f.cache.PutPage(ctx, url, body); err != nil {
			f.logger.Warn("page cache write failed", "url", url, "error", err)
		}
	}
	return body, nil
}
