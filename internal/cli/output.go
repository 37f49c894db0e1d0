package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/pfrederiksen/diz-scraper/internal/textutil"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// titleWidth caps the title column of the verbose text table
const titleWidth = 60

// OutputResult summarizes a scrape run
type OutputResult struct {
	ScrapedAt       time.Time              `json:"scraped_at"`
	SeminarCount    int                    `json:"seminar_count"`
	WithDescription int                    `json:"with_description"`
	OutputFiles     []string               `json:"output_files"`
	Seminars        []*seminar.Seminar     `json:"seminars,omitempty"`
	Metrics         map[string]interface{} `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.SeminarCount == 0 {
		fmt.Fprintln(w, "No seminars found.")
	} else {
		fmt.Fprintf(w, "Successfully scraped %d seminars (%d with description)\n",
			result.SeminarCount, result.WithDescription)
	}

	for _, f := range result.OutputFiles {
		fmt.Fprintf(w, "Saved: %s\n", f)
	}

	if !verbose || len(result.Seminars) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Status", "Date", "Title", "Location", "Description"})
	for i, s := range result.Seminars {
		hasDescription := "no"
		if s.HasDescription() {
			hasDescription = "yes"
		}
		t.AppendRow(table.Row{
			i + 1,
			s.Status,
			s.Date,
			textutil.Truncate(s.Title, titleWidth),
			s.Location,
			hasDescription,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	return nil
}
