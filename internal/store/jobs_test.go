package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/domain"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db.Pool
}

func TestSubmitDeduplicates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	job := domain.Job{
		CompanyID:   "acme",
		Title:       "Data Engineer",
		URL:         "https://boards.example.com/acme/jobs/1",
		Location:    "Barcelona, Spain",
		Description: "first version",
		WorkMode:    "hybrid",
		IsBarcelona: true,
		IsDataRole:  true,
	}

	inserted, err := Submit(ctx, db, job)
	require.NoError(t, err)
	require.True(t, inserted)

	// same identity, different payload: first writer wins
	job.Description = "second version"
	job.Title = "Senior Data Engineer"
	inserted, err = Submit(ctx, db, job)
	require.NoError(t, err)
	require.False(t, inserted)

	got, err := QueryRecent(ctx, db, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Data Engineer", got[0].Title)
	require.Equal(t, "first version", got[0].Description)
	require.Equal(t, "new", got[0].Status)
}

func TestSubmitRejectsIncomplete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := Submit(ctx, db, domain.Job{Title: "Data Engineer"})
	require.Error(t, err)

	_, err = Submit(ctx, db, domain.Job{CompanyID: "acme", URL: "https://x.example/1"})
	require.Error(t, err)
}

func TestQueryRecentFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	jobs := []domain.Job{
		{CompanyID: "acme", Title: "Data Engineer", URL: "https://x.example/1",
			Location: "Barcelona", IsBarcelona: true, IsDataRole: true},
		{CompanyID: "acme", Title: "Account Manager", URL: "https://x.example/2",
			Location: "Barcelona", IsBarcelona: true, IsDataRole: false},
		{CompanyID: "acme", Title: "Data Engineer", URL: "https://x.example/3",
			Location: "Berlin", IsBarcelona: false, IsDataRole: true},
	}
	n, err := SubmitAll(ctx, db, jobs)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := QueryRecent(ctx, db, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "https://x.example/1", got[0].URL)
}

func TestQueryMatchingLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := SubmitAll(ctx, db, []domain.Job{
		{CompanyID: "acme", Title: "Data Engineer", URL: "https://x.example/1",
			Location: "Barcelona, Spain"},
		{CompanyID: "acme", Title: "Data Engineer", URL: "https://x.example/2",
			Location: "Remote - Spain"},
		{CompanyID: "acme", Title: "Data Engineer", URL: "https://x.example/3",
			Location: "Munich, Germany"},
	})
	require.NoError(t, err)

	got, err := QueryMatching(ctx, db, "spain")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestQueryRecentOrdersNewestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// explicit discovered_at values to pin the ordering
	for i, ts := range []string{
		"2026-08-01T10:00:00Z",
		"2026-08-03T10:00:00Z",
		"2026-08-02T10:00:00Z",
	} {
		_, err := db.ExecContext(ctx, `
INSERT INTO jobs (id, company_id, title, url, discovered_at, is_barcelona, is_data_role)
VALUES (?, 'acme', 'Data Engineer', ?, ?, 1, 1);
`, fmt.Sprintf("key-%d", i), fmt.Sprintf("https://x.example/%d", i), ts)
		require.NoError(t, err)
	}

	since, err := time.Parse(time.RFC3339, "2026-08-02T00:00:00Z")
	require.NoError(t, err)

	got, err := QueryRecent(ctx, db, since)
	require.NoError(t, err)
	require.Len(t, got, 2) // the 08-01 row is older than since
	require.Equal(t, "2026-08-03T10:00:00Z", got[0].DiscoveredAt)
	require.Equal(t, "2026-08-02T10:00:00Z", got[1].DiscoveredAt)
}

func TestSetStatusAndCleanup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	job := domain.Job{CompanyID: "acme", Title: "Data Engineer",
		URL: "https://x.example/1", IsBarcelona: true, IsDataRole: true}
	_, err := Submit(ctx, db, job)
	require.NoError(t, err)

	require.NoError(t, SetStatus(ctx, db, job.IdentityKey(), "applied"))
	require.Error(t, SetStatus(ctx, db, "nope", "applied"))

	// touched rows survive cleanup even past the cutoff
	removed, err := Cleanup(ctx, db, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(0), removed)

	require.NoError(t, SetStatus(ctx, db, job.IdentityKey(), "new"))
	removed, err = Cleanup(ctx, db, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
}
