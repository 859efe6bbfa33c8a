package store

import (
	"fmt"
	"strconv"
)

// Setting keys.
const (
	SettingDefaultOffset   = "default_offset"
	SettingLocalPath       = "local_path"
	SettingInvert          = "invert"
	SettingDefaultMaxDaily = "default_max_daily"
	SettingCleanup         = "cleanup_after_publish"
	SettingCacheHours      = "cache_hours"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// SettingInt returns the setting parsed as an int, or fallback when it is
// missing or malformed.
func (s *Store) SettingInt(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Store) SettingBool(key string, fallback bool) bool {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func (s *Store) SettingString(key, fallback string) string {
	v, err := s.GetSetting(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}
