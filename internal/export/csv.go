package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/diz-scraper/internal/seminar"
)

// utf8BOM marks the file as UTF-8 for spreadsheet applications
const utf8BOM = "\xEF\xBB\xBF"

// WriteCSV writes seminars to path, creating parent directories as needed
func WriteCSV(path string, seminars []*seminar.Seminar) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}

	if err := EncodeCSV(f, seminars); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing CSV file: %w", err)
	}
	return nil
}

// EncodeCSV writes the BOM, the header row and one row per seminar with
// every field quoted
func EncodeCSV(w io.Writer, seminars []*seminar.Seminar) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	if err := writeQuotedRecord(bw, seminar.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, s := range seminars {
		if err := writeQuotedRecord(bw, s.Row()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// writeQuotedRecord writes one line with all fields quoted and embedded
// quotes doubled. encoding/csv only quotes fields that need it.
func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
