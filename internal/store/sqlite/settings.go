package sqlite

import (
	"database/sql"
	"fmt"
)

// SettingsRepo backs internal/settings.Store's Backend interface with the
// settings table (key PK, value TEXT), per spec.md §6.
type SettingsRepo struct {
	db *sql.DB
}

// SaveSetting upserts a single key/value pair.
func (r *SettingsRepo) SaveSetting(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: save setting %s: %w", key, err)
	}
	return nil
}

// LoadSettings returns every persisted key/value pair.
func (r *SettingsRepo) LoadSettings() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("sqlite: scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
