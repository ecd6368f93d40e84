// Package feed fetches subscription documents and probes feed URLs.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/tesso57/feedlist/internal/application/usecase"
	"golang.org/x/time/rate"
)

const (
	opmlAcceptHeader = "text/x-opml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
	feedAcceptHeader = "application/atom+xml, application/rss+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Feedlist/1.0"
	// DefaultMaxDocumentBytes caps downloaded subscription documents.
	DefaultMaxDocumentBytes = 4 << 20
	// DefaultProbeTimeout applies to each probe when no timeout is set.
	DefaultProbeTimeout = 10 * time.Second
)

// ErrDocumentTooLarge is returned when a document exceeds the size cap.
var ErrDocumentTooLarge = errors.New("document too large")

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

type acceptTransport struct {
	base   http.RoundTripper
	accept string
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", t.accept)
	}
	return base.RoundTrip(clone)
}

// ParserFunc is exposed for testing.
// It allows mocking the feed parsing logic.
var ParserFunc = defaultParser

func defaultParser(ctx context.Context, url, userAgent string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = &http.Client{Transport: acceptTransport{base: http.DefaultTransport, accept: feedAcceptHeader}}
	return fp.ParseURLWithContext(url, ctx)
}

// Client fetches documents and probes feeds.
type Client struct {
	HTTPClient       *http.Client
	UserAgent        string
	MaxDocumentBytes int64
}

// NewClient constructs a Client with the given user agent and size cap.
func NewClient(userAgent string, maxDocumentBytes int64) *Client {
	return new(Client{
		HTTPClient:       &http.Client{Transport: acceptTransport{base: http.DefaultTransport, accept: opmlAcceptHeader}},
		UserAgent:        userAgent,
		MaxDocumentBytes: maxDocumentBytes,
	})
}

func (c *Client) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// FetchDocument downloads a subscription document.
func (c *Client) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("document url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent())

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Transport: acceptTransport{base: http.DefaultTransport, accept: opmlAcceptHeader}}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	limit := c.MaxDocumentBytes
	if limit <= 0 {
		limit = DefaultMaxDocumentBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrDocumentTooLarge, limit, url)
	}
	return body, nil
}

// Probe fetches a feed and returns its title.
func (c *Client) Probe(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("feed url is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	parsed, err := ParserFunc(ctx, url, c.userAgent())
	if err != nil {
		return "", err
	}
	return parsed.Title, nil
}

// ProbeAll probes feeds concurrently. Results keep the order of urls.
func (c *Client) ProbeAll(ctx context.Context, urls []string, opt usecase.ProbeOptions) ([]usecase.ProbeResult, usecase.ProbeReport) {
	results := make([]usecase.ProbeResult, len(urls))
	report := usecase.ProbeReport{Requested: len(urls)}

	concurrency := opt.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	limit := rate.Inf
	if opt.RatePerSecond > 0 {
		limit = rate.Limit(opt.RatePerSecond)
	}
	limiter := rate.NewLimiter(limit, concurrency)
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)

	for i, url := range urls {
		results[i].URL = url
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()

			var title string
			err := limiter.Wait(ctx)
			if err != nil && ctx.Err() == nil {
				// The limiter gives up early when the next token is due after the deadline.
				err = fmt.Errorf("wait for rate limit: %w: %v", context.DeadlineExceeded, err)
			}
			if err == nil {
				probeCtx, cancel := context.WithTimeout(ctx, timeout)
				title, err = c.Probe(probeCtx, url)
				cancel()
			}

			mu.Lock()
			defer mu.Unlock()
			results[i].Title = title
			results[i].Err = err
			switch {
			case err == nil:
				report.Succeeded++
			case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
				report.TimedOut++
			default:
				report.Failed++
			}
		})
	}
	wg.Wait()

	return results, report
}
