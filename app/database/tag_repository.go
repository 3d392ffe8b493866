package database

import (
	"fmt"

	"github.com/lib/pq"
)

var _ TagRepository = (*PostgresTagRepository)(nil)

// PostgresTagRepository handles database operations for tags
type PostgresTagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

// EnsureTag creates the tag if missing and returns its ID
func (r *PostgresTagRepository) EnsureTag(userID, name string) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, userID, name).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to ensure tag: %w", err)
	}

	return id, nil
}

// TagFeed associates a tag with a feed
func (r *PostgresTagRepository) TagFeed(feedID, tagID string) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_tags (feed_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, feedID, tagID)

	if err != nil {
		return fmt.Errorf("failed to tag feed: %w", err)
	}

	return nil
}

// GetFeedTagIDs returns the IDs of all tags associated with a feed
func (r *PostgresTagRepository) GetFeedTagIDs(feedID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT tag_id FROM feed_tags WHERE feed_id = $1
	`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("failed to scan tag ID: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tagIDs, nil
}

// TagArticle associates the given tags with an article in one statement
func (r *PostgresTagRepository) TagArticle(articleID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(`
		INSERT INTO article_tags (article_id, tag_id)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING
	`, articleID, pq.Array(tagIDs))

	if err != nil {
		return fmt.Errorf("failed to tag article: %w", err)
	}

	return nil
}
