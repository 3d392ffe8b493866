package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ FeedRepository = (*PostgresFeedRepository)(nil)

// PostgresFeedRepository handles database operations for feeds
type PostgresFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *PostgresFeedRepository {
	return &PostgresFeedRepository{db: db}
}

const feedColumns = `id, user_id, title, description, site_url, feed_url, icon_url,
	etag, last_modified, last_sync_at, last_success_at,
	sync_status, sync_fail_count, sync_error, created_at, updated_at`

func scanFeed(row interface{ Scan(...any) error }) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.UserID, &feed.Title, &feed.Description, &feed.SiteURL,
		&feed.FeedURL, &feed.IconURL, &feed.ETag, &feed.LastModified,
		&feed.LastSyncAt, &feed.LastSuccessAt,
		&feed.SyncStatus, &feed.SyncFailCount, &feed.SyncError,
		&feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetFeed retrieves a feed by its database ID
func (r *PostgresFeedRepository) GetFeed(id string) (*Feed, error) {
	feed, err := scanFeed(r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

// GetFeedsDueForSync returns non-broken feeds whose last sync attempt is
// missing or older than ten minutes, longest-neglected first. Never-synced
// feeds sort ahead of everything else.
func (r *PostgresFeedRepository) GetFeedsDueForSync(limit int) ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE sync_status <> 'broken'
		  AND (last_sync_at IS NULL OR last_sync_at < NOW() - INTERVAL '10 minutes')
		ORDER BY last_sync_at ASC NULLS FIRST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds due for sync: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

// ListFeeds returns all feeds ordered by creation time
func (r *PostgresFeedRepository) ListFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + `
		FROM feeds
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func collectFeeds(rows *sql.Rows) ([]Feed, error) {
	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// ListUserIDs returns the distinct owners of all subscriptions
func (r *PostgresFeedRepository) ListUserIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT user_id FROM feeds ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ID rows: %w", err)
	}

	return userIDs, nil
}

// GetFeedCount returns the total number of feeds
func (r *PostgresFeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// UpsertFeed inserts a subscription or updates an existing one for the same
// user and feed URL. Returns the database ID and whether a row was created.
func (r *PostgresFeedRepository) UpsertFeed(userID, feedURL, siteURL, title string) (string, bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM feeds WHERE user_id = $1 AND feed_url = $2
	`, userID, feedURL).Scan(&id)

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE feeds
			SET site_url = $2, title = $3, updated_at = NOW()
			WHERE id = $1
		`, id, siteURL, title)
		if err != nil {
			return "", false, fmt.Errorf("failed to update feed: %w", err)
		}
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("failed to check existing feed: %w", err)
	}

	err = r.db.QueryRow(`
		INSERT INTO feeds (user_id, feed_url, site_url, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, feedURL, siteURL, title).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("failed to insert feed: %w", err)
	}

	return id, true, nil
}

// UpdateFeedMetadata stores feed-level metadata after a successful parse
func (r *PostgresFeedRepository) UpdateFeedMetadata(id, title, description, iconURL string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET title = $2, description = $3, icon_url = $4, updated_at = NOW()
		WHERE id = $1
	`, id, title, description, iconURL)

	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}

	return nil
}

// UpdateFetchValidators caches the ETag/Last-Modified pair from a 200 response
func (r *PostgresFeedRepository) UpdateFetchValidators(id, etag, lastModified string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET etag = $2, last_modified = $3, updated_at = NOW()
		WHERE id = $1
	`, id, etag, lastModified)

	if err != nil {
		return fmt.Errorf("failed to update fetch validators: %w", err)
	}

	return nil
}

// MarkSyncSuccess records a successful sync attempt and clears failure state
func (r *PostgresFeedRepository) MarkSyncSuccess(id string, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET sync_status = 'ok', sync_fail_count = 0, sync_error = NULL,
		    last_sync_at = $2, last_success_at = $2, updated_at = NOW()
		WHERE id = $1
	`, id, at)

	if err != nil {
		return fmt.Errorf("failed to mark sync success: %w", err)
	}

	return nil
}

// MarkSyncFailure records a failed sync attempt. The attempt timestamp is
// written even though it failed.
func (r *PostgresFeedRepository) MarkSyncFailure(id string, status SyncStatus, failCount int, message string, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET sync_status = $2, sync_fail_count = $3, sync_error = $4,
		    last_sync_at = $5, updated_at = NOW()
		WHERE id = $1
	`, id, status, failCount, message, at)

	if err != nil {
		return fmt.Errorf("failed to mark sync failure: %w", err)
	}

	return nil
}

// ResetSyncHealth clears failure state so a broken feed re-enters scheduling
func (r *PostgresFeedRepository) ResetSyncHealth(id string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET sync_status = 'ok', sync_fail_count = 0, sync_error = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to reset sync health: %w", err)
	}

	return nil
}
