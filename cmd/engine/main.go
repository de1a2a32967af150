package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"jobradar-engine/internal/config"
	"jobradar-engine/internal/scrape"
	"jobradar-engine/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yml (default: <data>/config.yml)")
		dataDir    = flag.String("data", defaultDataDir(), "data directory")
		retention  = flag.Duration("retention", 0, "delete untouched jobs older than this (0 disables)")
	)
	flag.Parse()

	log.SetFlags(log.LstdFlags)

	// .env is optional; real deployments use the environment directly
	if err := godotenv.Load(); err == nil {
		log.Printf("[engine] loaded .env")
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("[engine] create data dir: %v", err)
	}

	// cron fires on a schedule, runs can overlap when a pass drags
	lock := flock.New(filepath.Join(*dataDir, "run.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("[engine] acquire run lock: %v", err)
	}
	if !locked {
		log.Printf("[engine] another run is in progress, exiting")
		return
	}
	defer func() { _ = lock.Unlock() }()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath, err = config.EnsureUserConfig(*dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			log.Fatalf("[engine] bootstrap config: %v", err)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[engine] load config: %v", err)
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = *dataDir
	}

	companiesFile := cfg.App.CompaniesFile
	if companiesFile == "" {
		companiesFile = filepath.Join("config", "companies.yml")
	}
	registry, err := config.LoadRegistry(companiesFile)
	if err != nil {
		log.Fatalf("[engine] load registry: %v", err)
	}

	db, err := store.Open(filepath.Join(cfg.App.DataDir, "jobs.db"))
	if err != nil {
		log.Fatalf("[engine] open store: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatalf("[engine] migrate store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[engine] scraping %d configured companies", len(registry))
	runner := scrape.NewRunner(db.Pool, cfg, registry)
	sum, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("[engine] run: %v", err)
	}

	if *retention > 0 {
		removed, err := store.Cleanup(ctx, db.Pool, time.Now().Add(-*retention))
		if err != nil {
			log.Printf("[engine] cleanup: %v", err)
		} else if removed > 0 {
			log.Printf("[engine] cleanup removed %d stale jobs", removed)
		}
	}

	log.Printf("[engine] Scraping complete: %d new jobs found", sum.NewJobs)
	log.Printf("[engine] Companies scraped: %d/%d (failed: %d, skipped: %d)",
		sum.Scraped, sum.Configured, sum.Failed, sum.Skipped)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".jobradar")
}
