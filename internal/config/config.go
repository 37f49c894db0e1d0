// Package config loads scraper settings from defaults, an optional YAML
// file, .env files and DIZ_* environment variables, in increasing order of
// precedence. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/diz-scraper/internal/scraper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir = "output"
	DefaultDebugDir  = "debug"
	OutputFileName   = "seminars.csv"
	LogFileName      = "scraper.log"
)

// Config holds all settings of a scrape run
type Config struct {
	BaseURL    string        `yaml:"baseURL"`
	ListURL    string        `yaml:"listURL"`
	OutputFile string        `yaml:"outputFile"`
	Excel      bool          `yaml:"excel"`
	ICSFile    string        `yaml:"icsFile"`
	DebugDir   string        `yaml:"debugDir"`
	Debug      bool          `yaml:"debug"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"maxRetries"`
	RetryDelay time.Duration `yaml:"retryDelay"`
	UserAgent  string        `yaml:"userAgent"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		BaseURL:    scraper.BaseURL,
		ListURL:    scraper.ListURL,
		OutputFile: filepath.Join(DefaultOutputDir, OutputFileName),
		Excel:      true,
		DebugDir:   DefaultDebugDir,
		Timeout:    scraper.Timeout,
		MaxRetries: scraper.MaxRetries,
		RetryDelay: scraper.RetryDelay,
		UserAgent:  scraper.UserAgent,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load builds a configuration from defaults, the YAML file at path (if not
// empty), the given .env files and the environment.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile merges the YAML file at path into cfg. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// LoadEnvFiles loads dotenv files into the process environment. Variables
// already set are not overridden, and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from DIZ_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("DIZ_BASE_URL", &c.BaseURL)
	str("DIZ_LIST_URL", &c.ListURL)
	if dir, ok := lookup("DIZ_OUTPUT_DIR"); ok && dir != "" {
		c.OutputFile = filepath.Join(dir, OutputFileName)
		c.Log.File = filepath.Join(dir, LogFileName)
	}
	str("DIZ_OUTPUT_FILE", &c.OutputFile)
	str("DIZ_ICS_FILE", &c.ICSFile)
	str("DIZ_DEBUG_DIR", &c.DebugDir)
	str("DIZ_USER_AGENT", &c.UserAgent)
	str("DIZ_LOG_LEVEL", &c.Log.Level)
	str("DIZ_LOG_FORMAT", &c.Log.Format)
	str("DIZ_LOG_FILE", &c.Log.File)

	if v, ok := lookup("DIZ_DEBUG_MODE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DIZ_DEBUG_MODE: %w", err)
		}
		c.Debug = b
	}
	if v, ok := lookup("DIZ_EXCEL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DIZ_EXCEL: %w", err)
		}
		c.Excel = b
	}
	if v, ok := lookup("DIZ_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DIZ_MAX_RETRIES: %w", err)
		}
		c.MaxRetries = n
	}
	if v, ok := lookup("DIZ_TIMEOUT"); ok && v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid DIZ_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v, ok := lookup("DIZ_RETRY_DELAY"); ok && v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid DIZ_RETRY_DELAY: %w", err)
		}
		c.RetryDelay = d
	}

	return nil
}

// parseSeconds accepts a Go duration ("30s") or a plain number of seconds
func parseSeconds(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Validate checks that the configuration can drive a scrape
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	for name, raw := range map[string]string{"base URL": c.BaseURL, "list URL": c.ListURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	return nil
}

// ExcelFile returns the spreadsheet path next to the CSV output, or "" when
// spreadsheet export is disabled
func (c *Config) ExcelFile() string {
	if !c.Excel {
		return ""
	}
	return strings.TrimSuffix(c.OutputFile, filepath.Ext(c.OutputFile)) + ".xlsx"
}

// ScraperOptions converts the configuration into scraper options. Debug
// storage is attached separately since creating it touches the filesystem.
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		BaseURL:    c.BaseURL,
		ListURL:    c.ListURL,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
		RetryDelay: c.RetryDelay,
		UserAgent:  c.UserAgent,
	}
}
