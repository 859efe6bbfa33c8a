package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runColumns = `id, run_key, image_path, repo_dir, remote_url, year, offset_weeks, max_daily,
	multiplier, invert, total_events, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*Run, error) {
	r := &Run{}
	var createdAt, updatedAt string
	var invert int
	err := sc.Scan(&r.ID, &r.Key, &r.ImagePath, &r.RepoDir, &r.RemoteURL, &r.Year, &r.OffsetWeeks,
		&r.MaxDaily, &r.Multiplier, &invert, &r.TotalEvents, &r.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.Invert = invert == 1
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func (s *Store) CreateRun(n NewRun) (*Run, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	invert := 0
	if n.Invert {
		invert = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (run_key, image_path, repo_dir, remote_url, year, offset_weeks, max_daily,
			multiplier, invert, total_events, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), n.ImagePath, n.RepoDir, n.RemoteURL, n.Year, n.OffsetWeeks, n.MaxDaily,
		n.Multiplier, invert, n.TotalEvents, StatusPlanned, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetRun(id)
}

func (s *Store) GetRun(id int64) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

func (s *Store) GetRunByKey(key string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_key = ?`, key))
	if err != nil {
		return nil, fmt.Errorf("get run %q: %w", key, err)
	}
	return r, nil
}

// ListRuns returns runs newest first. A limit of 0 returns all of them.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *Store) UpdateRunStatus(id int64, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update run %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetIncompleteRun returns the most recent run whose painting was started but
// not finished, or nil when there is none.
func (s *Store) GetIncompleteRun() (*Run, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE status IN (?, ?, ?) ORDER BY id DESC LIMIT 1`,
		StatusPainting, StatusInterrupted, StatusFailed,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get incomplete run: %w", err)
	}
	return r, nil
}
