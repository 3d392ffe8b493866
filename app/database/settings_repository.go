package database

import (
	"database/sql"
	"fmt"
)

var _ SettingsRepository = (*PostgresSettingsRepository)(nil)

// PostgresSettingsRepository handles database operations for per-user settings
type PostgresSettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// GetSettings returns a user's settings row, or nil if none exists
func (r *PostgresSettingsRepository) GetSettings(userID string) (*Settings, error) {
	var settings Settings
	err := r.db.QueryRow(`
		SELECT user_id, auto_archive_days
		FROM user_settings
		WHERE user_id = $1
	`, userID).Scan(&settings.UserID, &settings.AutoArchiveDays)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &settings, nil
}
