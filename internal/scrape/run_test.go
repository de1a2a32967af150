package scrape

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/config"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/store"
)

type stubFetcher struct {
	name string
	jobs []domain.Job
	err  error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	if s.err != nil {
		return types.ScrapeResult{Source: s.name}, s.err
	}
	return types.ScrapeResult{Source: s.name, Jobs: s.jobs}, nil
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db.Pool
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Scrape = config.ScrapeConfig{
		SourceDelay:    0,
		RequestTimeout: 5 * time.Second,
		SourceTimeout:  5 * time.Second,
		Concurrency:    1,
		PerHostRPS:     100,
	}
	return cfg
}

func TestRunFailingSourceDoesNotBlockOthers(t *testing.T) {
	db := testDB(t)

	registry := []domain.Company{
		{ID: "broken", Name: "Broken", Platform: "greenhouse", PlatformID: "x"},
		{ID: "good", Name: "Good", Platform: "greenhouse", PlatformID: "y"},
	}

	r := NewRunner(db, testConfig(), registry)
	r.buildFetcher = func(co domain.Company) (types.Fetcher, error) {
		if co.ID == "broken" {
			return &stubFetcher{name: "stub:broken", err: errors.New("boom")}, nil
		}
		return &stubFetcher{name: "stub:good", jobs: []domain.Job{
			{CompanyID: "good", Title: "Data Engineer", URL: "https://x.example/1",
				Location: "Barcelona", IsBarcelona: true, IsDataRole: true},
		}}, nil
	}

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Configured)
	require.Equal(t, 1, sum.Scraped)
	require.Equal(t, 1, sum.Failed)
	require.Equal(t, 1, sum.NewJobs)

	got, err := store.QueryRecent(context.Background(), db, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestRunCountsSkips(t *testing.T) {
	db := testDB(t)

	registry := []domain.Company{
		{ID: "byhand", Platform: "manual"},
		{ID: "mystery", Platform: "taleo"},
		{ID: "gapped", Platform: "lever"}, // missing platform_id
	}

	r := NewRunner(db, testConfig(), registry)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Configured)
	require.Equal(t, 3, sum.Skipped)
	require.Zero(t, sum.Scraped)
	require.Zero(t, sum.Failed)
}

func TestRunSkipsEmailWithoutCredentials(t *testing.T) {
	t.Setenv("GMAIL_ADDRESS", "")
	t.Setenv("GMAIL_APP_PASSWORD", "")
	db := testDB(t)

	registry := []domain.Company{
		{ID: "hp", Name: "HP", Platform: "email", EmailSenders: []string{"jobs@hp.com"}},
	}

	r := NewRunner(db, testConfig(), registry)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Configured)
	require.Equal(t, 1, sum.Skipped)
	require.Zero(t, sum.Scraped)
	require.Zero(t, sum.Failed)
}

func TestRunDuplicateAcrossRuns(t *testing.T) {
	db := testDB(t)

	job := domain.Job{CompanyID: "good", Title: "Data Engineer",
		URL: "https://x.example/1", IsBarcelona: true, IsDataRole: true}
	registry := []domain.Company{{ID: "good", Platform: "greenhouse", PlatformID: "y"}}

	r := NewRunner(db, testConfig(), registry)
	r.buildFetcher = func(domain.Company) (types.Fetcher, error) {
		return &stubFetcher{name: "stub", jobs: []domain.Job{job}}, nil
	}

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.NewJobs)

	// second run sees the same posting again
	sum, err = r.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, sum.NewJobs)
	require.Equal(t, 1, sum.Scraped)
}

func TestFetcherForDispatch(t *testing.T) {
	t.Setenv("GMAIL_ADDRESS", "")
	t.Setenv("GMAIL_APP_PASSWORD", "")
	r := NewRunner(nil, testConfig(), nil)

	for platform, id := range map[string]string{
		"greenhouse":      "tok",
		"lever":           "slug",
		"workable":        "sub",
		"ashby":           "org",
		"smartrecruiters": "co",
		"workday":         "t/wd3/site",
		"amazon": "",
		"sap":    "",
	} {
		f, err := r.fetcherFor(domain.Company{ID: "c", Platform: platform, PlatformID: id})
		require.NoError(t, err, platform)
		require.NotNil(t, f, platform)
	}

	f, err := r.fetcherFor(domain.Company{ID: "c", Platform: "manual"})
	require.NoError(t, err)
	require.Nil(t, f)

	// the email lane only dispatches once credentials resolve
	f, err = r.fetcherFor(domain.Company{ID: "c", Platform: "email"})
	require.NoError(t, err)
	require.Nil(t, f)

	r.Config.Email.Address = "alerts@example.com"
	r.Config.Email.AppPassword = "app-pass"
	f, err = r.fetcherFor(domain.Company{ID: "c", Platform: "email"})
	require.NoError(t, err)
	require.NotNil(t, f)

	_, err = r.fetcherFor(domain.Company{ID: "c", Platform: "workday"})
	require.Error(t, err)
}
