package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CacheMaxDaily(year, maxDaily int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO contribution_cache (year, max_daily, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(year) DO UPDATE SET max_daily = excluded.max_daily, fetched_at = excluded.fetched_at`,
		year, maxDaily, now,
	)
	if err != nil {
		return fmt.Errorf("cache max daily %d: %w", year, err)
	}
	return nil
}

// CachedMaxDaily returns the cached maximum for year. fresh is false when the
// entry is older than maxAge; ok is false when nothing is cached.
func (s *Store) CachedMaxDaily(year int, maxAge time.Duration) (maxDaily int, fresh, ok bool, err error) {
	var fetchedAt string
	err = s.db.QueryRow(
		`SELECT max_daily, fetched_at FROM contribution_cache WHERE year = ?`, year,
	).Scan(&maxDaily, &fetchedAt)
	if err == sql.ErrNoRows {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("cached max daily %d: %w", year, err)
	}
	t, _ := time.Parse(time.RFC3339, fetchedAt)
	return maxDaily, time.Since(t) <= maxAge, true, nil
}
