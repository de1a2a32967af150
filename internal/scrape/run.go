// Package scrape orchestrates one ingestion pass over the company registry.
package scrape

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobradar-engine/internal/config"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/amazon"
	"jobradar-engine/internal/scrape/ashby"
	"jobradar-engine/internal/scrape/email"
	"jobradar-engine/internal/scrape/greenhouse"
	"jobradar-engine/internal/scrape/lever"
	"jobradar-engine/internal/scrape/sap"
	"jobradar-engine/internal/scrape/smartrecruiters"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/scrape/util"
	"jobradar-engine/internal/scrape/workable"
	"jobradar-engine/internal/scrape/workday"
	"jobradar-engine/internal/secrets"
	"jobradar-engine/internal/store"
)

// RunSummary is the accounting of one pass. Configured counts every registry
// entry; Skipped covers entries that never ran (manual, unknown platform,
// missing platform id, disabled email lane).
type RunSummary struct {
	NewJobs    int
	Scraped    int
	Failed     int
	Skipped    int
	Configured int
}

type Runner struct {
	DB       *sql.DB
	Config   config.Config
	Registry []domain.Company

	// HTTPClient is shared by all adapters; tests swap its transport.
	HTTPClient *http.Client

	limiter *util.HostLimiter

	// buildFetcher is swappable in tests.
	buildFetcher func(co domain.Company) (types.Fetcher, error)
}

func NewRunner(db *sql.DB, cfg config.Config, registry []domain.Company) *Runner {
	r := &Runner{
		DB:         db,
		Config:     cfg,
		Registry:   registry,
		HTTPClient: &http.Client{Timeout: cfg.Scrape.RequestTimeout},
		limiter:    util.NewHostLimiter(cfg.Scrape.PerHostRPS, 1),
	}
	r.buildFetcher = r.fetcherFor
	return r
}

// fetcherFor dispatches a registry entry to its platform adapter.
// A nil fetcher with nil error means the entry is skipped.
func (r *Runner) fetcherFor(co domain.Company) (types.Fetcher, error) {
	switch co.Platform {
	case "manual":
		return nil, nil
	case "greenhouse", "lever", "workable", "ashby", "smartrecruiters", "workday":
		if co.PlatformID == "" {
			return nil, fmt.Errorf("company %s: platform %s needs a platform_id", co.ID, co.Platform)
		}
	}

	switch co.Platform {
	case "greenhouse":
		return greenhouse.New(co, r.HTTPClient, r.limiter), nil
	case "lever":
		return lever.New(co, r.HTTPClient, r.limiter), nil
	case "workable":
		return workable.New(co, r.HTTPClient, r.limiter), nil
	case "ashby":
		return ashby.New(co, r.HTTPClient, r.limiter), nil
	case "smartrecruiters":
		return smartrecruiters.New(co, r.HTTPClient, r.limiter), nil
	case "workday":
		return workday.New(co, r.HTTPClient, r.limiter), nil
	case "amazon":
		return amazon.New(co, r.HTTPClient, r.limiter), nil
	case "sap":
		return sap.New(co, r.HTTPClient, r.limiter), nil
	case "email":
		opts := r.emailOptions()
		if opts.Username == "" || opts.Password == "" {
			log.Printf("[run] company=%s mailbox credentials not configured, email lane disabled", co.ID)
			return nil, nil
		}
		return email.New(co, opts, r.limiter), nil
	default:
		log.Printf("[run] company=%s unknown platform %q, skipping", co.ID, co.Platform)
		return nil, nil
	}
}

// emailOptions resolves mailbox credentials: config first (env-expanded),
// then the OS keychain. Empty credentials leave the lane disabled.
func (r *Runner) emailOptions() email.Options {
	ec := r.Config.Email
	opts := email.Options{
		Addr:     ec.Addr(),
		Username: ec.Address,
		Password: ec.AppPassword,
		Mailbox:  ec.Mailbox,
		DaysBack: ec.DaysBack,
	}
	if opts.Username == "" || opts.Password == "" {
		if addr, pass, ok := secrets.MailboxCredentials(ec.IMAPHost); ok {
			opts.Username = addr
			opts.Password = pass
		}
	}
	return opts
}

// Run executes one pass: build a fetcher per registry entry, run them with
// bounded concurrency and an inter-source delay, persist everything that
// comes back. A failing source is logged and counted, never fatal.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{Configured: len(r.Registry)}

	type prepared struct {
		co domain.Company
		f  types.Fetcher
	}
	var ready []prepared
	for _, co := range r.Registry {
		f, err := r.buildFetcher(co)
		if err != nil {
			log.Printf("[run] company=%s not run: %v", co.ID, err)
			sum.Skipped++
			continue
		}
		if f == nil {
			sum.Skipped++
			continue
		}
		ready = append(ready, prepared{co: co, f: f})
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Scrape.Concurrency)

	for i, p := range ready {
		// pacing between launches keeps sequential runs polite even
		// before the per-host limiter kicks in
		if i > 0 && r.Config.Scrape.SourceDelay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(r.Config.Scrape.SourceDelay):
			}
		}

		p := p
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, r.Config.Scrape.SourceTimeout)
			defer cancel()

			log.Printf("[run] scraping %s (%s)...", p.co.Name, p.co.Platform)
			res, err := p.f.Fetch(fctx)
			if err != nil {
				log.Printf("[run] source=%s error: %v", p.f.Name(), err)
				mu.Lock()
				sum.Failed++
				mu.Unlock()
				return nil
			}

			inserted := 0
			if len(res.Jobs) > 0 {
				ictx, icancel := context.WithTimeout(ctx, time.Minute)
				defer icancel()
				inserted, err = store.SubmitAll(ictx, r.DB, res.Jobs)
				if err != nil {
					log.Printf("[run] source=%s persist error: %v", res.Source, err)
					mu.Lock()
					sum.Failed++
					mu.Unlock()
					return nil
				}
			}

			mu.Lock()
			sum.Scraped++
			sum.NewJobs += inserted
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sum, err
	}

	attempted := sum.Scraped + sum.Failed
	if attempted > 0 && sum.Failed*5 > attempted {
		log.Printf("[run] warning: %d/%d sources failed, check connectivity or markup drift", sum.Failed, attempted)
	}
	return sum, nil
}
