package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobradar-engine/internal/domain"
)

// StoredJob is a persisted job row. The write-time flags are frozen at
// discovery; status and user notes are the only mutable columns.
type StoredJob struct {
	ID           string
	CompanyID    string
	Title        string
	URL          string
	Location     string
	Department   string
	PostedDate   string
	DiscoveredAt string
	Description  string
	WorkMode     string

	IsBarcelona        bool
	IsDataRole         bool
	IsGreatFit         bool
	MentionsVisa       bool
	MentionsRelocation bool

	Status    string
	UserNotes string
}

// Submit inserts a job if its identity key has not been seen before.
// Returns true when the row was inserted, false when it was a duplicate.
// The first writer wins: duplicates never update existing columns.
func Submit(ctx context.Context, db *sql.DB, job domain.Job) (bool, error) {
	if job.CompanyID == "" || job.URL == "" {
		return false, errors.New("store: job missing company id or url")
	}
	if job.Title == "" {
		return false, errors.New("store: job missing title")
	}

	discoveredAt := time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs
  (id, company_id, title, url, location, department, posted_date,
   discovered_at, description, work_mode,
   is_barcelona, is_data_role, is_great_fit, mentions_visa, mentions_relocation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		job.IdentityKey(), job.CompanyID, job.Title, job.URL,
		job.Location, job.Department, job.PostedDate,
		discoveredAt, job.Description, job.WorkMode,
		boolInt(job.IsBarcelona), boolInt(job.IsDataRole), boolInt(job.IsGreatFit),
		boolInt(job.MentionsVisa), boolInt(job.MentionsRelocation),
	)
	if err != nil {
		return false, fmt.Errorf("insert job %s: %w", job.URL, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SubmitAll writes a batch and reports how many rows were new.
func SubmitAll(ctx context.Context, db *sql.DB, jobs []domain.Job) (int, error) {
	inserted := 0
	for _, job := range jobs {
		ok, err := Submit(ctx, db, job)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// QueryRecent returns Barcelona data-role jobs discovered since the given
// time, newest first.
func QueryRecent(ctx context.Context, db *sql.DB, since time.Time) ([]StoredJob, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE discovered_at >= ?
  AND is_barcelona = 1
  AND is_data_role = 1
ORDER BY discovered_at DESC;
`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// QueryMatching returns jobs whose location text contains the given
// fragment, case-insensitively, newest first.
func QueryMatching(ctx context.Context, db *sql.DB, locationFragment string) ([]StoredJob, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE location LIKE '%' || ? || '%' COLLATE NOCASE
ORDER BY discovered_at DESC;
`, locationFragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// SetStatus updates the review status of a stored job.
func SetStatus(ctx context.Context, db *sql.DB, id, status string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("store: no job with id %s", id)
	}
	return nil
}

// Cleanup deletes rows discovered before the cutoff, skipping anything the
// user has touched. Returns the number of rows removed.
func Cleanup(ctx context.Context, db *sql.DB, olderThan time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
DELETE FROM jobs
WHERE discovered_at < ?
  AND status = 'new'
  AND user_notes = '';
`, olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const jobColumns = `id, company_id, title, url, location, department,
  posted_date, discovered_at, description, work_mode,
  is_barcelona, is_data_role, is_great_fit, mentions_visa, mentions_relocation,
  status, user_notes`

func scanJobs(rows *sql.Rows) ([]StoredJob, error) {
	var out []StoredJob
	for rows.Next() {
		var j StoredJob
		var bcn, data, fit, visa, reloc int
		if err := rows.Scan(
			&j.ID, &j.CompanyID, &j.Title, &j.URL, &j.Location, &j.Department,
			&j.PostedDate, &j.DiscoveredAt, &j.Description, &j.WorkMode,
			&bcn, &data, &fit, &visa, &reloc,
			&j.Status, &j.UserNotes,
		); err != nil {
			return nil, err
		}
		j.IsBarcelona = bcn != 0
		j.IsDataRole = data != 0
		j.IsGreatFit = fit != 0
		j.MentionsVisa = visa != 0
		j.MentionsRelocation = reloc != 0
		out = append(out, j)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
