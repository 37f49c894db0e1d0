package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/diz-scraper/internal/logger"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/pfrederiksen/diz-scraper/internal/storage"
	"github.com/pfrederiksen/diz-scraper/internal/textutil"
)

const (
	BaseURL    = "https://didaktikzentrum.de"
	ListURL    = BaseURL + "/programm/aktuelles-programm/simplelist"
	UserAgent  = "diz-scraper/1.0 (github.com/pfrederiksen/diz-scraper)"
	Timeout    = 30 * time.Second
	MaxRetries = 3
	RetryDelay = 1 * time.Second
)

// Options configures a Scraper.
type Options struct {
	BaseURL    string
	ListURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string

	// Debug receives raw responses when set
	Debug *storage.Storage
}

// DefaultOptions returns the options for scraping the live site.
func DefaultOptions() Options {
	return Options{
		BaseURL:    BaseURL,
		ListURL:    ListURL,
		Timeout:    Timeout,
		MaxRetries: MaxRetries,
		RetryDelay: RetryDelay,
		UserAgent:  UserAgent,
	}
}

// Scraper handles fetching and parsing the seminar program.
type Scraper struct {
	fetcher    *fetcher
	baseURL    string
	url        string
	debug      *storage.Storage
	strategies []Strategy
}

// New creates a new Scraper instance.
func New(opts Options) (*Scraper, error) {
	f, err := newFetcher(opts.Timeout, opts.MaxRetries, opts.RetryDelay, opts.UserAgent)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		fetcher:    f,
		baseURL:    opts.BaseURL,
		url:        opts.ListURL,
		debug:      opts.Debug,
		strategies: DefaultStrategies,
	}, nil
}

// Scrape fetches the listing page and every linked detail page. Records are
// returned in listing order. An error is returned only when the listing
// itself cannot be fetched or parsed; detail failures leave that record's
// description empty.
func (s *Scraper) Scrape(ctx context.Context) ([]*seminar.Seminar, error) {
	logger.Info("Starting scraping", logger.Fields{"url": s.url})

	page, err := s.fetcher.fetch(ctx, s.url)
	if err != nil {
		logger.Error("Failed to fetch listing page", logger.Fields{"url": s.url}, err)
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	logger.IncrCounter("pages.listing")
	logger.Debug("Successfully fetched main page", nil)

	if s.debug != nil {
		if path, err := s.debug.SaveResponse(storage.ListingPrefix, page.Body); err != nil {
			logger.Warn("Failed to save listing response", logger.Fields{"error": err.Error()})
		} else {
			logger.Debug("Saved listing response", logger.Fields{"file": path})
		}
	}

	doc, err := page.Document()
	if err != nil {
		logger.Error("Failed to parse listing page", logger.Fields{"url": s.url}, err)
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	seminars := parseListing(doc.Selection, s.baseURL)
	logger.Info("Found seminars to process", logger.Fields{"count": len(seminars)})

	for i, sem := range seminars {
		logger.Debug("Processing seminar", logger.Fields{
			"index": i + 1,
			"total": len(seminars),
			"title": sem.Title,
		})

		if sem.DetailURL == "" {
			continue
		}

		details, err := s.FetchDetails(ctx, sem.DetailURL)
		if err != nil {
			logger.Warn("Failed to fetch seminar details", logger.Fields{
				"url":   sem.DetailURL,
				"error": err.Error(),
			})
			continue
		}
		sem.ApplyDetails(*details)
	}

	logger.SetGauge("seminars.total", float64(len(seminars)))
	return seminars, nil
}

// FetchDetails fetches a detail page and extracts its description. When
// debug storage is configured the raw page is saved and its path returned in
// DebugFile. A missing description is not an error.
func (s *Scraper) FetchDetails(ctx context.Context, detailURL string) (*seminar.Details, error) {
	page, err := s.fetcher.fetch(ctx, detailURL)
	if err != nil {
		return nil, err
	}
	logger.IncrCounter("pages.detail")

	doc, err := page.Document()
	if err != nil {
		logger.Error("Error processing detail page", logger.Fields{"url": detailURL}, err)
		return nil, err
	}

	description, ok := extractWith(doc.Selection, s.strategies)
	if ok {
		logger.Info("Found description", logger.Fields{
			"url":     detailURL,
			"preview": textutil.Truncate(description, 100),
		})
	} else {
		logger.Warn("No description found", logger.Fields{"url": detailURL})
	}

	details := &seminar.Details{Description: description}

	if s.debug != nil {
		path, err := s.debug.SaveDetailResponse(detailURL, page.Body)
		if err != nil {
			logger.Warn("Failed to save detail response", logger.Fields{
				"url":   detailURL,
				"error": err.Error(),
			})
		} else {
			details.DebugFile = path
		}
	}

	return details, nil
}
