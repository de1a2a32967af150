package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir       string `yaml:"data_dir"`
		CompaniesFile string `yaml:"companies_file"`
	} `yaml:"app"`

	Scrape ScrapeConfig `yaml:"scrape"`
	Email  EmailConfig  `yaml:"email"`
}

// ScrapeConfig paces the orchestrator. Sequential by default; bumping
// concurrency keeps the per-host limiter in charge of remote politeness.
type ScrapeConfig struct {
	SourceDelay    time.Duration
	RequestTimeout time.Duration
	SourceTimeout  time.Duration
	Concurrency    int
	PerHostRPS     float64
}

// EmailConfig drives the inbox-alert lane. Address/AppPassword come from the
// environment (or keychain); when they are absent the lane is disabled, which
// is a normal condition, not an error.
type EmailConfig struct {
	IMAPHost    string `yaml:"imap_host"`
	IMAPPort    int    `yaml:"imap_port"`
	Mailbox     string `yaml:"mailbox"`
	DaysBack    int    `yaml:"days_back"`
	Address     string `yaml:"address"`
	AppPassword string `yaml:"app_password"`
}

func (e EmailConfig) Addr() string {
	host := e.IMAPHost
	if host == "" {
		host = "imap.gmail.com"
	}
	port := e.IMAPPort
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (e EmailConfig) Enabled() bool {
	return e.Address != "" && e.AppPassword != ""
}

// rawConfig mirrors the YAML shape; durations are strings there.
type rawConfig struct {
	App struct {
		DataDir       string `yaml:"data_dir"`
		CompaniesFile string `yaml:"companies_file"`
	} `yaml:"app"`
	Scrape struct {
		SourceDelay    string  `yaml:"source_delay"`
		RequestTimeout string  `yaml:"request_timeout"`
		SourceTimeout  string  `yaml:"source_timeout"`
		Concurrency    int     `yaml:"concurrency"`
		PerHostRPS     float64 `yaml:"per_host_rps"`
	} `yaml:"scrape"`
	Email EmailConfig `yaml:"email"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} references so
// secrets never live in the file itself.
func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.App = raw.App
	cfg.Email = raw.Email

	cfg.Scrape = ScrapeConfig{
		SourceDelay:    2 * time.Second,
		RequestTimeout: 30 * time.Second,
		SourceTimeout:  2 * time.Minute,
		Concurrency:    1,
		PerHostRPS:     1,
	}
	if raw.Scrape.SourceDelay != "" {
		d, err := time.ParseDuration(raw.Scrape.SourceDelay)
		if err != nil {
			return cfg, fmt.Errorf("parse scrape.source_delay %q: %w", raw.Scrape.SourceDelay, err)
		}
		cfg.Scrape.SourceDelay = d
	}
	if raw.Scrape.RequestTimeout != "" {
		d, err := time.ParseDuration(raw.Scrape.RequestTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse scrape.request_timeout %q: %w", raw.Scrape.RequestTimeout, err)
		}
		cfg.Scrape.RequestTimeout = d
	}
	if raw.Scrape.SourceTimeout != "" {
		d, err := time.ParseDuration(raw.Scrape.SourceTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse scrape.source_timeout %q: %w", raw.Scrape.SourceTimeout, err)
		}
		cfg.Scrape.SourceTimeout = d
	}
	if raw.Scrape.Concurrency > 0 {
		cfg.Scrape.Concurrency = raw.Scrape.Concurrency
	}
	if raw.Scrape.PerHostRPS > 0 {
		cfg.Scrape.PerHostRPS = raw.Scrape.PerHostRPS
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
