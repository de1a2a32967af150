package config

import (
	"errors"
	"fmt"
	"strings"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.Scrape.Concurrency < 1 {
		errs = append(errs, "scrape.concurrency must be >= 1")
	}
	if cfg.Scrape.SourceDelay < 0 {
		errs = append(errs, "scrape.source_delay must not be negative")
	}
	if cfg.Scrape.RequestTimeout <= 0 {
		errs = append(errs, "scrape.request_timeout must be positive")
	}
	if cfg.Email.DaysBack < 0 {
		errs = append(errs, "email.days_back must not be negative")
	}
	if cfg.Email.IMAPPort < 0 || cfg.Email.IMAPPort > 65535 {
		errs = append(errs, "email.imap_port must be 0..65535")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func ValidateRegistry(companies []string) error {
	seen := map[string]bool{}
	for i, id := range companies {
		if id == "" {
			return fmt.Errorf("companies[%d].id is required", i)
		}
		if seen[id] {
			return fmt.Errorf("duplicate company id %q", id)
		}
		seen[id] = true
	}
	return nil
}
