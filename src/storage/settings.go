package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetSetting returns the setting stored under key, or nil when absent
func GetSetting(ctx context.Context, db Querier, key string) (*Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = ?`
	var s Setting
	err := sqlscan.Get(ctx, db, &s, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &s, nil
}

// SetSetting inserts or overwrites a setting
func SetSetting(ctx context.Context, db Execer, key, value string) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

// DeleteSetting removes a setting; deleting a missing key is not an error
func DeleteSetting(ctx context.Context, db Execer, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// ListSettings returns every setting ordered by key
func ListSettings(ctx context.Context, db Querier) ([]Setting, error) {
	var settings []Setting
	if err := sqlscan.Select(ctx, db, &settings, `SELECT key, value, updated_at FROM settings ORDER BY key`); err != nil {
		return nil, err
	}
	return settings, nil
}

// Settings exposes the settings table as a string key/value store
type Settings struct {
	db ExecQuerier
}

// NewSettings wraps db as a key/value store
func NewSettings(db ExecQuerier) *Settings {
	return &Settings{db: db}
}

// Settings returns the key/value view of this database
func (d *DB) Settings() *Settings {
	return NewSettings(d.db)
}

// Get returns the value for key and whether it was present
func (s *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	setting, err := GetSetting(ctx, s.db, key)
	if err != nil || setting == nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set stores value under key
func (s *Settings) Set(ctx context.Context, key, value string) error {
	return SetSetting(ctx, s.db, key, value)
}

// Delete removes key
func (s *Settings) Delete(ctx context.Context, key string) error {
	return DeleteSetting(ctx, s.db, key)
}
