package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/pfrederiksen/diz-scraper/internal/storage"
)

const listPath = "/programm/aktuelles-programm/simplelist"

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", name))
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

// testOptions points a scraper at server with zero retry delay
func testOptions(server *httptest.Server) Options {
	opts := DefaultOptions()
	opts.BaseURL = server.URL
	opts.ListURL = server.URL + listPath
	opts.Timeout = 5 * time.Second
	opts.RetryDelay = 0
	return opts
}

func newTestScraper(t *testing.T, opts Options) *Scraper {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

// newSiteServer serves the fixture listing and detail pages
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	list := readFixture(t, "sample_seminar_list.html")
	detail := readFixture(t, "sample_seminar_detail.html")
	neuberufene := readFixture(t, "sample_neuberufene_detail.html")

	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "diz-scraper") {
				t.Errorf("User-Agent = %q, should contain 'diz-scraper'", userAgent)
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(body))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(listPath, serve(list))
	mux.HandleFunc("/programm/details/test-seminar", serve(detail))
	mux.HandleFunc("/programm/details/rechtsgrundlagen-neuberufene", serve(neuberufene))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrape(t *testing.T) {
	server := newSiteServer(t)

	debug, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	opts := testOptions(server)
	opts.Debug = debug

	seminars, err := newTestScraper(t, opts).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() unexpected error: %v", err)
	}

	want := []*seminar.Seminar{
		{
			Status:      "Available",
			Date:        "01.02.2024",
			Title:       "Test Seminar Title",
			Location:    "Test Location",
			Certificate: "Certificate Type",
			Area:        "Test Area",
			DetailURL:   server.URL + "/programm/details/test-seminar",
			Description: "This is a test seminar description with important details about the content and objectives.",
		},
		{
			Status:      "Full",
			Date:        "15.02.2024",
			Title:       "Neuberufene Seminar",
			Location:    "Another Location",
			Certificate: "Another Certificate",
			Area:        "Another Area",
			DetailURL:   server.URL + "/programm/details/rechtsgrundlagen-neuberufene",
			Description: "Part one. Part two.",
		},
	}

	if diff := cmp.Diff(want, seminars, cmpopts.IgnoreFields(seminar.Seminar{}, "DebugFile")); diff != "" {
		t.Errorf("Scrape() mismatch (-want +got):\n%s", diff)
	}

	for _, sem := range seminars {
		if sem.DebugFile == "" {
			t.Errorf("seminar %q has no debug file", sem.Title)
			continue
		}
		if filepath.Dir(sem.DebugFile) != debug.Dir() {
			t.Errorf("debug file %q not in %q", sem.DebugFile, debug.Dir())
		}
		if _, err := os.Stat(sem.DebugFile); err != nil {
			t.Errorf("debug file %q: %v", sem.DebugFile, err)
		}
	}

	// Listing dump plus one dump per detail page (names may collide within a second)
	entries, err := os.ReadDir(debug.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Errorf("debug dir has %d files, want at least 2", len(entries))
	}
}

func TestScrape_WithoutDebug(t *testing.T) {
	server := newSiteServer(t)

	seminars, err := newTestScraper(t, testOptions(server)).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() unexpected error: %v", err)
	}
	if len(seminars) != 2 {
		t.Fatalf("Scrape() returned %d seminars, want 2", len(seminars))
	}
	for _, sem := range seminars {
		if sem.DebugFile != "" {
			t.Errorf("DebugFile = %q, want empty without debug storage", sem.DebugFile)
		}
		if !sem.HasDescription() {
			t.Errorf("seminar %q has no description", sem.Title)
		}
	}
}

func TestScrape_ListingErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			seminars, err := newTestScraper(t, testOptions(server)).Scrape(context.Background())
			if err == nil {
				t.Fatal("Scrape() expected error, got nil")
			}
			if seminars != nil {
				t.Errorf("Scrape() seminars = %v, want nil", seminars)
			}

			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				t.Fatalf("error %v is not a TransportError", err)
			}
			if transportErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", transportErr.StatusCode, tt.statusCode)
			}
			if got := atomic.LoadInt32(&attempts); got != MaxRetries {
				t.Errorf("listing requested %d times, want %d", got, MaxRetries)
			}
		})
	}
}

func TestScrape_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	opts := testOptions(server)
	server.Close()

	seminars, err := newTestScraper(t, opts).Scrape(context.Background())
	if err == nil {
		t.Fatal("Scrape() expected error for closed server")
	}
	if seminars != nil {
		t.Errorf("Scrape() seminars = %v, want nil", seminars)
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("error %v is not a TransportError", err)
	}
}

func TestScrape_RetriesListing(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<html><body><p>Keine Veranstaltungen</p></body></html>`))
	}))
	defer server.Close()

	seminars, err := newTestScraper(t, testOptions(server)).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() unexpected error: %v", err)
	}
	if seminars == nil || len(seminars) != 0 {
		t.Errorf("Scrape() = %v, want empty non-nil slice", seminars)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("listing requested %d times, want 3", got)
	}
}

func TestScrape_SingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	opts := testOptions(server)
	opts.MaxRetries = 1

	if _, err := newTestScraper(t, opts).Scrape(context.Background()); err == nil {
		t.Fatal("Scrape() expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("listing requested %d times, want 1", got)
	}
}

func TestScrape_DetailFailureDegrades(t *testing.T) {
	list := readFixture(t, "sample_seminar_list.html")
	detail := readFixture(t, "sample_seminar_detail.html")

	var brokenAttempts int32
	mux := http.NewServeMux()
	mux.HandleFunc(listPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(list))
	})
	mux.HandleFunc("/programm/details/test-seminar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detail))
	})
	mux.HandleFunc("/programm/details/rechtsgrundlagen-neuberufene", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&brokenAttempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	seminars, err := newTestScraper(t, testOptions(server)).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() unexpected error: %v", err)
	}
	if len(seminars) != 2 {
		t.Fatalf("Scrape() returned %d seminars, want 2", len(seminars))
	}

	if !seminars[0].HasDescription() {
		t.Error("first seminar should keep its description")
	}
	if seminars[1].Description != "" || seminars[1].DebugFile != "" {
		t.Errorf("failed detail should leave description and debug file empty, got %+v", seminars[1])
	}
	if seminars[1].Title != "Neuberufene Seminar" {
		t.Errorf("failed detail should keep listing fields, got title %q", seminars[1].Title)
	}
	if got := atomic.LoadInt32(&brokenAttempts); got != MaxRetries {
		t.Errorf("broken detail requested %d times, want %d", got, MaxRetries)
	}
}

func TestScrape_SessionCookies(t *testing.T) {
	var detailHadCookie atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc(listPath, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.Write([]byte(`<table><tr itemtype="http://schema.org/Event">
			<td class="re_title"><a href="/programm/details/one">One</a></td>
		</tr></table>`))
	})
	mux.HandleFunc("/programm/details/one", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil && c.Value == "abc123" {
			detailHadCookie.Store(true)
		}
		w.Write([]byte(`<div id="sp-component">Body</div>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	seminars, err := newTestScraper(t, testOptions(server)).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() unexpected error: %v", err)
	}
	if !detailHadCookie.Load() {
		t.Error("detail request did not carry the listing session cookie")
	}
	if len(seminars) != 1 || seminars[0].Description != "Body" {
		t.Errorf("Scrape() = %+v, want one seminar with description Body", seminars)
	}
	if seminars[0].Status != seminar.UnknownStatus {
		t.Errorf("Status = %q, want %q", seminars[0].Status, seminar.UnknownStatus)
	}
}

func TestFetchDetails_NoDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
	}))
	defer server.Close()

	details, err := newTestScraper(t, testOptions(server)).FetchDetails(context.Background(), server.URL+"/x")
	if err != nil {
		t.Fatalf("FetchDetails() unexpected error: %v", err)
	}
	if details.Description != "" {
		t.Errorf("Description = %q, want empty", details.Description)
	}
}

func TestFetchDetails_Latin1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Prüfung" with ü encoded as 0xFC
		w.Write([]byte("<div id=\"sp-component\">Pr\xfcfung</div>"))
	}))
	defer server.Close()

	details, err := newTestScraper(t, testOptions(server)).FetchDetails(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDetails() unexpected error: %v", err)
	}
	if details.Description != "Prüfung" {
		t.Errorf("Description = %q, want %q", details.Description, "Prüfung")
	}
}

func TestFetchDetails_DebugWriteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div id="sp-component">Body</div>`))
	}))
	defer server.Close()

	debug, err := storage.New(filepath.Join(t.TempDir(), "debug"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(debug.Dir()); err != nil {
		t.Fatal(err)
	}

	opts := testOptions(server)
	opts.Debug = debug

	details, err := newTestScraper(t, opts).FetchDetails(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDetails() unexpected error: %v", err)
	}
	if details.Description != "Body" {
		t.Errorf("Description = %q, want Body", details.Description)
	}
	if details.DebugFile != "" {
		t.Errorf("DebugFile = %q, want empty after failed write", details.DebugFile)
	}
}

func TestNew(t *testing.T) {
	s, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if s.fetcher == nil || s.fetcher.client == nil {
		t.Fatal("scraper client is nil")
	}
	if s.url != ListURL {
		t.Errorf("scraper url = %q, want %q", s.url, ListURL)
	}
	if s.baseURL != BaseURL {
		t.Errorf("scraper baseURL = %q, want %q", s.baseURL, BaseURL)
	}
	if s.fetcher.maxRetries != MaxRetries {
		t.Errorf("maxRetries = %d, want %d", s.fetcher.maxRetries, MaxRetries)
	}

	zero, err := New(Options{MaxRetries: 0})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if zero.fetcher.maxRetries != 1 {
		t.Errorf("maxRetries = %d, want at least one attempt", zero.fetcher.maxRetries)
	}
}
