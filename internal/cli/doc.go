// Package cli implements the command-line interface for diz-scraper.
//
// The cli package provides the Cobra-based CLI with a scrape command, which
// fetches the seminar program and exports it to CSV, XLSX and optionally
// iCalendar, and an analyze command, which summarizes a previously exported
// CSV file. It coordinates the config, scraper, storage and export packages.
package cli
