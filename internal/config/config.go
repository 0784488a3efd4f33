// Package config loads dashboard, importer and report settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve in minimal containers
)

const (
	DefaultBackendURL  = "http://localhost:8000"
	DefaultJobsPath    = "/jobs"
	DefaultDatabaseURL = "host=localhost user=postgres password=password dbname=careerflow port=5432 sslmode=disable"
)

// Config is the full runtime configuration. Every field has a default except secrets.
type Config struct {
	BackendURL         string
	JobsPath           string
	RequireJobURL      bool
	HTTPTimeout        time.Duration
	HistoryConcurrency int
	Port               int
	Timezone           string // location used for the tracker "today" counter

	DatabaseURL string

	Gmail  GmailConfig
	LLM    LLMConfig
	Report ReportConfig
}

type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	PollInterval    time.Duration
}

type LLMConfig struct {
	APIKey string
	Model  string
}

type ReportConfig struct {
	SMTPAddr  string
	User      string
	Password  string
	Recipient string
	Timezone  string
	At        string // HH:MM in Timezone
}

// Load reads the configuration from environment variables. Call godotenv.Load first
// if values should come from a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		BackendURL:  getEnv("CAREERFLOW_API_URL", DefaultBackendURL),
		JobsPath:    getEnv("CAREERFLOW_JOBS_PATH", DefaultJobsPath),
		Timezone:    getEnv("CAREERFLOW_TIMEZONE", "UTC"),
		DatabaseURL: getEnv("DATABASE_URL", DefaultDatabaseURL),
		Gmail: GmailConfig{
			CredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
			TokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		},
		LLM: LLMConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Report: ReportConfig{
			SMTPAddr:  getEnv("SMTP_ADDR", "smtp.gmail.com:587"),
			User:      os.Getenv("GMAIL_USER"),
			Password:  os.Getenv("GMAIL_APP_PASSWORD"),
			Recipient: os.Getenv("RECIPIENT_EMAIL"),
			Timezone:  getEnv("REPORT_TIMEZONE", "America/Chicago"),
			At:        getEnv("REPORT_TIME", "20:50"),
		},
	}

	var err error
	if cfg.RequireJobURL, err = getBool("CAREERFLOW_REQUIRE_JOB_URL", false); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("CAREERFLOW_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HistoryConcurrency, err = getInt("CAREERFLOW_HISTORY_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.Port, err = getInt("PORT", 3000); err != nil {
		return nil, err
	}
	if cfg.Gmail.PollInterval, err = getDuration("GMAIL_POLL_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if !strings.HasPrefix(cfg.JobsPath, "/") {
		cfg.JobsPath = "/" + cfg.JobsPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: CAREERFLOW_API_URL %q is not an absolute URL", c.BackendURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config error: CAREERFLOW_HTTP_TIMEOUT must be positive")
	}
	if c.HistoryConcurrency < 1 {
		return fmt.Errorf("config error: CAREERFLOW_HISTORY_CONCURRENCY must be at least 1")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT %d out of range", c.Port)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config error: CAREERFLOW_TIMEZONE: %w", err)
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("config error: REPORT_TIMEZONE: %w", err)
	}
	if _, _, err := c.Report.Clock(); err != nil {
		return err
	}
	if c.Gmail.PollInterval <= 0 {
		return fmt.Errorf("config error: GMAIL_POLL_INTERVAL must be positive")
	}
	return nil
}

// Location returns the tracker time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the report time zone.
func (r ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock parses At as hour and minute.
func (r ReportConfig) Clock() (int, int, error) {
	t, err := time.Parse("15:04", r.At)
	if err != nil {
		return 0, 0, fmt.Errorf("config error: REPORT_TIME %q must be HH:MM", r.At)
	}
	return t.Hour(), t.Minute(), nil
}

// MailEnabled reports whether enough SMTP settings are present to send the daily report.
func (r ReportConfig) MailEnabled() bool {
	return r.User != "" && r.Password != "" && r.Recipient != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config error: %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config error: %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config error: %s: %w", key, err)
	}
	return d, nil
}
