package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Progress returns the next cell to paint and how many of its events were
// already emitted. A run with no recorded progress starts at (0, 0).
func (s *Store) Progress(runID int64) (cell, emitted int, err error) {
	err = s.db.QueryRow(
		`SELECT cell, emitted FROM run_progress WHERE run_id = ?`, runID,
	).Scan(&cell, &emitted)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get progress %d: %w", runID, err)
	}
	return cell, emitted, nil
}

func (s *Store) SaveProgress(runID int64, cell, emitted int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO run_progress (run_id, cell, emitted, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET cell = excluded.cell, emitted = excluded.emitted, updated_at = excluded.updated_at`,
		runID, cell, emitted, now,
	)
	if err != nil {
		return fmt.Errorf("save progress %d: %w", runID, err)
	}
	return nil
}

func (s *Store) MarkProgressDone(runID int64, cells int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO run_progress (run_id, cell, emitted, done, updated_at) VALUES (?, ?, 0, 1, ?)
		 ON CONFLICT(run_id) DO UPDATE SET cell = excluded.cell, emitted = 0, done = 1, updated_at = excluded.updated_at`,
		runID, cells, now,
	)
	if err != nil {
		return fmt.Errorf("finish progress %d: %w", runID, err)
	}
	return nil
}

func (s *Store) GetProgress(runID int64) (*Progress, error) {
	p := &Progress{RunID: runID}
	var done int
	var updatedAt string
	err := s.db.QueryRow(
		`SELECT cell, emitted, done, updated_at FROM run_progress WHERE run_id = ?`, runID,
	).Scan(&p.Cell, &p.Emitted, &done, &updatedAt)
	if err == sql.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress %d: %w", runID, err)
	}
	p.Done = done == 1
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}
