package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/diz-scraper/internal/textutil"
)

// TimestampFormat is the layout of the timestamp in dump file names
const TimestampFormat = "20060102_150405"

// ListingPrefix names the dump of the listing page
const ListingPrefix = "raw_response"

// Storage handles persistence of debug responses
type Storage struct {
	debugDir string
	now      func() time.Time
}

// New creates a new Storage instance writing below debugDir
func New(debugDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(debugDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		debugDir = filepath.Join(home, debugDir[2:])
	}

	if err := os.MkdirAll(debugDir, 0755); err != nil {
		return nil, fmt.Errorf("creating debug directory: %w", err)
	}

	return &Storage{
		debugDir: debugDir,
		now:      time.Now,
	}, nil
}

// Dir returns the debug directory
func (s *Storage) Dir() string {
	return s.debugDir
}

// getDumpPath returns the path of a dump file for the given prefix
func (s *Storage) getDumpPath(prefix string) string {
	name := fmt.Sprintf("debug_response_%s_%s.html", prefix, s.now().Format(TimestampFormat))
	return filepath.Join(s.debugDir, name)
}

// SaveResponse writes body to a new dump file and returns its path
func (s *Storage) SaveResponse(prefix string, body []byte) (string, error) {
	path := s.getDumpPath(textutil.SanitizeFilename(prefix))

	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("writing debug response: %w", err)
	}

	return path, nil
}

// SaveDetailResponse dumps a detail page, naming the file after the URL
func (s *Storage) SaveDetailResponse(detailURL string, body []byte) (string, error) {
	return s.SaveResponse(URLSuffix(detailURL), body)
}

// URLSuffix derives a file name fragment from a URL: the part after the
// last "?" with "=" and "/" replaced by underscores.
func URLSuffix(rawURL string) string {
	suffix := rawURL
	if i := strings.LastIndex(rawURL, "?"); i >= 0 {
		suffix = rawURL[i+1:]
	}
	return strings.NewReplacer("=", "_", "/", "_").Replace(suffix)
}
