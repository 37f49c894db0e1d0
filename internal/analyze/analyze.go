// Package analyze summarizes an exported seminar CSV file: how many
// seminars have a description, an example description, and how much disk
// space the referenced debug dumps use.
package analyze

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/diz-scraper/internal/logger"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/pfrederiksen/diz-scraper/internal/textutil"
)

// previewLength is the number of description characters shown in reports
const previewLength = 100

const utf8BOM = "\xEF\xBB\xBF"

// exampleDebugFiles is the number of debug files listed in reports
const exampleDebugFiles = 5

// Report is the result of analyzing an exported file
type Report struct {
	Total              int
	WithDescription    int
	WithoutDescription int
	Example            *seminar.Seminar
	DebugFiles         []string
	DebugFilesSize     int64
}

// AnalyzeFile reads and analyzes the CSV file at path
func AnalyzeFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	seminars, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return Analyze(seminars), nil
}

// ReadCSV parses an exported CSV. Columns are matched by header name, so
// column order and a leading BOM do not matter.
func ReadCSV(r io.Reader) ([]*seminar.Seminar, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == utf8BOM {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var seminars []*seminar.Seminar
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		row := make([]string, len(seminar.Columns))
		for i, col := range seminar.Columns {
			if j, ok := index[col]; ok && j < len(record) {
				row[i] = record[j]
			}
		}
		seminars = append(seminars, seminar.FromRow(row))
	}

	return seminars, nil
}

// Analyze builds a report over seminars. Missing debug files are logged and
// skipped in the size total.
func Analyze(seminars []*seminar.Seminar) *Report {
	report := &Report{Total: len(seminars)}

	for _, s := range seminars {
		if s.Description != "" {
			report.WithDescription++
			if report.Example == nil {
				report.Example = s
			}
		} else {
			report.WithoutDescription++
		}

		if s.DebugFile == "" {
			continue
		}
		report.DebugFiles = append(report.DebugFiles, s.DebugFile)

		info, err := os.Stat(s.DebugFile)
		if err != nil {
			logger.Warn("Failed to get size of debug file", logger.Fields{
				"file":  s.DebugFile,
				"error": err.Error(),
			})
			continue
		}
		report.DebugFilesSize += info.Size()
	}

	return report
}

// FormatFileSize renders a byte count with one decimal in B, KB, MB, GB or TB
func FormatFileSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}

// Render writes the report as tables
func (r *Report) Render(w io.Writer) {
	counts := table.NewWriter()
	counts.SetOutputMirror(w)
	counts.SetTitle("Description field analysis")
	counts.AppendHeader(table.Row{"Seminars", "Count"})
	counts.AppendRows([]table.Row{
		{"With description", r.WithDescription},
		{"Without description", r.WithoutDescription},
		{"With debug file", len(r.DebugFiles)},
	})
	counts.AppendFooter(table.Row{"Total", r.Total})
	counts.SetStyle(table.StyleRounded)
	counts.Render()

	if r.Example != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Example of a description:")
		fmt.Fprintf(w, "  Title: %s\n", r.Example.Title)
		fmt.Fprintf(w, "  Description: %s...\n", textutil.Truncate(r.Example.Description, previewLength))
	}

	if len(r.DebugFiles) == 0 {
		return
	}

	fmt.Fprintln(w)
	files := table.NewWriter()
	files.SetOutputMirror(w)
	files.SetTitle("Example debug files")
	files.AppendHeader(table.Row{"#", "File"})
	for i, f := range r.DebugFiles {
		if i == exampleDebugFiles {
			break
		}
		files.AppendRow(table.Row{i + 1, f})
	}
	files.SetStyle(table.StyleRounded)
	files.Render()

	if r.DebugFilesSize > 0 {
		fmt.Fprintf(w, "\nTotal size of debug files: %s\n", FormatFileSize(r.DebugFilesSize))
	}
}
