package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher is the default Fetcher for listing and detail pages. Colly
// handles per-domain politeness (delay, robots.txt) so sequential detail
// fetches do not hammer the source.
type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int
}

// NewCollyFetcher builds a fetcher from the source fetch configuration.
func NewCollyFetcher(cfg FetchConfig) *CollyFetcher {
	f := &CollyFetcher{
		UserAgent:      cfg.UserAgent,
		MaxRetries:     3,
		RequestTimeout: 30 * time.Second,
		DomainDelay:    time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}

	if cfg.TimeoutSeconds > 0 {
		f.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		f.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimitRPS > 0 {
		f.DomainDelay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}

	return f
}

func (f *CollyFetcher) buildCollector(host string) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.AllowedDomains(host),
		colly.DetectCharset(),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
		RandomDelay: f.DomainDelay / 2,
	})

	c.SetRequestTimeout(f.RequestTimeout)

	c.OnError(func(r *colly.Response, err error) {
		if r.Request.Ctx.GetAny("retries") == nil {
			r.Request.Ctx.Put("retries", 0)
		}
		retries := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries {
			r.Request.Ctx.Put("retries", retries+1)
			log.Printf("[Colly] Retry %d/%d for %s: %v", retries+1, f.MaxRetries, r.Request.URL, err)
			time.Sleep(time.Duration(retries+1) * time.Second)
			r.Request.Retry()
		}
	})

	return c
}

// Fetch implements the Fetcher interface. On retry exhaustion the retry
// handler's nested Request.Retry calls unwind through every stack level's
// error callback, so settling the outcome must be idempotent: a sync.Once
// guards it against the repeated terminal-error invocations and the
// ctx-cancellation race alike.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Colly matches AllowedDomains against the bare hostname, never
	// host:port.
	c := f.buildCollector(parsed.Hostname())

	var result *FetchedDocument
	var fetchErr error
	var once sync.Once
	done := make(chan struct{})

	settle := func(doc *FetchedDocument, err error) {
		once.Do(func() {
			result, fetchErr = doc, err
			close(done)
		})
	}

	c.OnResponse(func(r *colly.Response) {
		settle(&FetchedDocument{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        io.NopCloser(bytes.NewReader(r.Body)),
			FetchedAt:   time.Now(),
			Headers:     map[string][]string(r.Headers.Clone()),
		}, nil)
	})

	c.OnError(func(r *colly.Response, err error) {
		retries := 0
		if r.Request.Ctx.GetAny("retries") != nil {
			retries = r.Request.Ctx.GetAny("retries").(int)
		}
		if retries >= f.MaxRetries {
			settle(nil, &FetchError{URL: targetURL, StatusCode: r.StatusCode, Err: err})
		}
	})

	go func() {
		select {
		case <-ctx.Done():
			settle(nil, ctx.Err())
		case <-done:
		}
	}()

	if err := c.Visit(targetURL); err != nil {
		settle(nil, &FetchError{URL: targetURL, Err: err})
	}

	// The collector is synchronous: by the time Visit returns, OnResponse
	// or OnError has run. This is the backstop for neither firing.
	settle(nil, &FetchError{URL: targetURL, Err: fmt.Errorf("no response received")})

	<-done

	if fetchErr != nil {
		return nil, fetchErr
	}
	return result, nil
}
