package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestURLSuffix(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{
			url:  "https://didaktikzentrum.de/programm?view=event&id=42",
			want: "view_event&id_42",
		},
		{
			url:  "https://didaktikzentrum.de/programm/test-seminar",
			want: "https:__didaktikzentrum.de_programm_test-seminar",
		},
		{
			url:  "https://example.com/a?b=1?c=2",
			want: "c_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := URLSuffix(tt.url); got != tt.want {
				t.Errorf("URLSuffix(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSaveDetailResponse(t *testing.T) {
	tmpDir := t.TempDir()

	storage, err := New(filepath.Join(tmpDir, "debug"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	storage.now = func() time.Time {
		return time.Date(2024, 2, 1, 9, 30, 5, 0, time.UTC)
	}

	body := []byte("<html><body>detail</body></html>")
	path, err := storage.SaveDetailResponse("https://didaktikzentrum.de/programm/test-seminar", body)
	if err != nil {
		t.Fatalf("SaveDetailResponse() error: %v", err)
	}

	wantName := "debug_response_https___didaktikzentrum.de_programm_test-seminar_20240201_093005.html"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %q, want %q", filepath.Base(path), wantName)
	}
	if filepath.Dir(path) != storage.Dir() {
		t.Errorf("file dir = %q, want %q", filepath.Dir(path), storage.Dir())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if string(data) != string(body) {
		t.Errorf("dump content = %q, want %q", data, body)
	}
}

func TestSaveResponse_ListingPrefix(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	path, err := storage.SaveResponse(ListingPrefix, []byte("listing"))
	if err != nil {
		t.Fatalf("SaveResponse() error: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "debug_response_raw_response_") || !strings.HasSuffix(name, ".html") {
		t.Errorf("unexpected dump name %q", name)
	}
}

func TestSaveResponse_WriteError(t *testing.T) {
	tmpDir := t.TempDir()
	storage, err := New(filepath.Join(tmpDir, "debug"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// Removing the directory makes the write fail
	if err := os.RemoveAll(storage.Dir()); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.SaveResponse("x", []byte("x")); err == nil {
		t.Error("SaveResponse() expected error for missing directory")
	}
}
