package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/diz-scraper/internal/logger"
	"golang.org/x/net/html/charset"
)

// Page is a successfully fetched response.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// Document parses the page body, decoding it according to its content type.
func (p *Page) Document() (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(p.Body), p.ContentType)
	if err != nil {
		return nil, &ProcessingError{URL: p.URL, Err: fmt.Errorf("decoding body: %w", err)}
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ProcessingError{URL: p.URL, Err: fmt.Errorf("parsing HTML: %w", err)}
	}
	return doc, nil
}

// fetcher issues GET requests over one session, retrying transport failures.
type fetcher struct {
	client     *resty.Client
	maxRetries int
	retryDelay time.Duration
}

func newFetcher(timeout time.Duration, maxRetries int, retryDelay time.Duration, userAgent string) (*fetcher, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	client.SetCookieJar(jar)
	client.SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &fetcher{
		client:     client,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// fetchOnce performs a single GET.
func (f *fetcher) fetchOnce(ctx context.Context, url string) (*Page, error) {
	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	logger.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode()}
	}

	return &Page{
		URL:         url,
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}

// fetch performs a GET, retrying up to maxRetries attempts in total with a
// constant delay between attempts.
func (f *fetcher) fetch(ctx context.Context, url string) (*Page, error) {
	var page *Page
	attempt := 0

	operation := func() error {
		attempt++
		p, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		page = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.retryDelay), uint64(f.maxRetries-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("fetch.retries")
		logger.Warn("Request attempt failed", logger.Fields{
			"url":      url,
			"attempt":  attempt,
			"attempts": f.maxRetries,
			"wait":     wait.String(),
			"error":    err.Error(),
		})
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		logger.IncrCounter("fetch.failures")
		return nil, fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}

	return page, nil
}
