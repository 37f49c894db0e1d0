package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/diz-scraper/internal/analyze"
	"github.com/pfrederiksen/diz-scraper/internal/config"
	"github.com/pfrederiksen/diz-scraper/internal/export"
	"github.com/pfrederiksen/diz-scraper/internal/logger"
	"github.com/pfrederiksen/diz-scraper/internal/scraper"
	"github.com/pfrederiksen/diz-scraper/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig     string
	flagEnvFile    string
	flagOutput     string
	flagNoExcel    bool
	flagICS        string
	flagDebug      bool
	flagDebugDir   string
	flagTimeout    time.Duration
	flagMaxRetries int
	flagRetryDelay time.Duration
	flagBaseURL    string
	flagListURL    string
	flagFormat     string
	flagVerbose    bool
	flagLogFormat  string
	flagLogFile    string
)

// NewRootCmd creates the root command. Running it without a subcommand
// scrapes.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diz-scraper",
		Short: "Scrape the didaktikzentrum.de seminar program",
		Long: `A CLI tool to scrape the seminar program of didaktikzentrum.de.
Fetches the seminar listing and every seminar's detail page and writes
status, date, title, location, certificate, area and description to CSV
and XLSX files, and optionally an iCalendar feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Path to a dotenv file")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: json or text")
	pf.StringVar(&flagLogFile, "log-file", "", "Also write logs to this file")

	addScrapeFlags(cmd)

	scrape := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape seminars and export them",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}
	addScrapeFlags(scrape)

	cmd.AddCommand(scrape, newAnalyzeCmd())
	return cmd
}

func addScrapeFlags(cmd *cobra.Command) {
	defaults := config.Default()

	f := cmd.Flags()
	f.StringVarP(&flagOutput, "output", "o", defaults.OutputFile, "CSV output file")
	f.BoolVar(&flagNoExcel, "no-excel", false, "Skip the XLSX export")
	f.StringVar(&flagICS, "ics", "", "Also write dated seminars to this iCalendar file")
	f.BoolVar(&flagDebug, "debug", false, "Save raw HTML responses to the debug directory")
	f.StringVar(&flagDebugDir, "debug-dir", defaults.DebugDir, "Directory for raw HTML responses")
	f.DurationVar(&flagTimeout, "timeout", defaults.Timeout, "Per-request timeout")
	f.IntVar(&flagMaxRetries, "max-retries", defaults.MaxRetries, "Attempts per request")
	f.DurationVar(&flagRetryDelay, "retry-delay", defaults.RetryDelay, "Delay between attempts")
	f.StringVar(&flagBaseURL, "base-url", defaults.BaseURL, "Site base URL for relative links")
	f.StringVar(&flagListURL, "list-url", defaults.ListURL, "Seminar listing URL")
	f.StringVar(&flagFormat, "format", "text", "Summary format: text or json")
}

// loadConfig layers flags set on the command line over file and environment
// settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputFile = flagOutput
	}
	if f.Changed("no-excel") {
		cfg.Excel = !flagNoExcel
	}
	if f.Changed("ics") {
		cfg.ICSFile = flagICS
	}
	if f.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if f.Changed("debug-dir") {
		cfg.DebugDir = flagDebugDir
	}
	if f.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if f.Changed("max-retries") {
		cfg.MaxRetries = flagMaxRetries
	}
	if f.Changed("retry-delay") {
		cfg.RetryDelay = flagRetryDelay
	}
	if f.Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if f.Changed("list-url") {
		cfg.ListURL = flagListURL
	}
	if flagVerbose {
		cfg.Log.Level = string(logger.LevelDebug)
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the default logger. The returned function closes the
// log file, if any.
func setupLogger(cfg *config.Config, stderr io.Writer) (func(), error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	format := logger.Format(strings.ToLower(cfg.Log.Format))
	if format != logger.FormatJSON && format != logger.FormatText {
		return nil, fmt.Errorf("invalid log format: %s (must be 'json' or 'text')", cfg.Log.Format)
	}

	if cfg.Log.File == "" {
		logger.SetDefault(logger.NewWithFormat(level, format, stderr))
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetDefault(logger.NewWithFormat(level, format, stderr, f))
	return func() { f.Close() }, nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	closeLog, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	logger.Info("Starting scraper", logger.Fields{
		"list_url": cfg.ListURL,
		"output":   cfg.OutputFile,
		"debug":    cfg.Debug,
	})

	opts := cfg.ScraperOptions()
	if cfg.Debug {
		store, err := storage.New(cfg.DebugDir)
		if err != nil {
			return fmt.Errorf("initializing debug storage: %w", err)
		}
		opts.Debug = store
	}

	sc, err := scraper.New(opts)
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	seminars, err := sc.Scrape(cmd.Context())
	if err != nil {
		logger.Error("No seminars were scraped", nil, err)
		return fmt.Errorf("scraping seminars: %w", err)
	}

	if err := export.WriteCSV(cfg.OutputFile, seminars); err != nil {
		logger.Error("Failed to export CSV", logger.Fields{"file": cfg.OutputFile}, err)
		return fmt.Errorf("exporting CSV: %w", err)
	}
	logger.Info("Saved seminars", logger.Fields{"count": len(seminars), "file": cfg.OutputFile})

	excelFile := cfg.ExcelFile()
	if excelFile != "" {
		if err := export.WriteXLSX(excelFile, seminars); err != nil {
			logger.Error("Failed to export to Excel", logger.Fields{"file": excelFile}, err)
			return fmt.Errorf("exporting XLSX: %w", err)
		}
		logger.Info("Successfully exported data to Excel", logger.Fields{"file": excelFile})
	}

	if cfg.ICSFile != "" {
		count, err := export.WriteICS(cfg.ICSFile, seminars)
		if err != nil {
			logger.Error("Failed to export calendar", logger.Fields{"file": cfg.ICSFile}, err)
			return fmt.Errorf("exporting ICS: %w", err)
		}
		logger.Info("Exported calendar", logger.Fields{"file": cfg.ICSFile, "events": count})
	}

	result := &OutputResult{
		ScrapedAt:    time.Now().UTC(),
		SeminarCount: len(seminars),
		OutputFiles:  []string{cfg.OutputFile},
		Seminars:     seminars,
	}
	if excelFile != "" {
		result.OutputFiles = append(result.OutputFiles, excelFile)
	}
	if cfg.ICSFile != "" {
		result.OutputFiles = append(result.OutputFiles, cfg.ICSFile)
	}
	for _, s := range seminars {
		if s.HasDescription() {
			result.WithDescription++
		}
	}
	if flagVerbose {
		result.Metrics = logger.GetMetricsSnapshot()
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [csv-file]",
		Short: "Summarize an exported seminar CSV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, flagEnvFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			path := cfg.OutputFile
			if len(args) == 1 {
				path = args[0]
			}

			report, err := analyze.AnalyzeFile(path)
			if err != nil {
				logger.Error("Error analyzing CSV file", logger.Fields{"file": path}, err)
				return err
			}
			report.Render(cmd.OutOrStdout())
			return nil
		},
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
