package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var _ ArticleRepository = (*PostgresArticleRepository)(nil)

// PostgresArticleRepository handles database operations for articles
type PostgresArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db}
}

// GetExistingGUIDs checks which of the given GUIDs are already stored for a
// feed, in a single query. The result maps each known GUID to true.
func (r *PostgresArticleRepository) GetExistingGUIDs(feedID string, guids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(guids))
	if len(guids) == 0 {
		return existing, nil
	}

	rows, err := r.db.Query(`
		SELECT guid FROM articles
		WHERE feed_id = $1 AND guid = ANY($2)
	`, feedID, pq.Array(guids))
	if err != nil {
		return nil, fmt.Errorf("failed to check existing GUIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, fmt.Errorf("failed to scan GUID: %w", err)
		}
		existing[guid] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GUID rows: %w", err)
	}

	return existing, nil
}

// InsertArticle stores one article. A concurrent insert of the same
// (feed_id, guid) pair is silently dropped by the unique index, in which case
// the returned ID is empty.
func (r *PostgresArticleRepository) InsertArticle(article Article) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO articles (
			user_id, feed_id, guid, title, content, description,
			url, author, published_at, is_read, is_archived
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (feed_id, guid) WHERE guid IS NOT NULL DO NOTHING
		RETURNING id
	`, article.UserID, article.FeedID, article.GUID, article.Title,
		article.Content, article.Description, article.URL, article.Author,
		article.PublishedAt, article.IsRead, article.IsArchived).Scan(&id)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert article: %w", err)
	}

	return id, nil
}

// GetUnreadArticles returns a feed's unread articles, newest first
func (r *PostgresArticleRepository) GetUnreadArticles(feedID string) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, feed_id, guid, title, content, description,
		       url, author, published_at, is_read, is_archived, created_at
		FROM articles
		WHERE feed_id = $1 AND is_read = FALSE
		ORDER BY published_at DESC
	`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		err := rows.Scan(
			&a.ID, &a.UserID, &a.FeedID, &a.GUID, &a.Title, &a.Content,
			&a.Description, &a.URL, &a.Author, &a.PublishedAt,
			&a.IsRead, &a.IsArchived, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// MarkArticlesRead marks the given articles as read in one statement
func (r *PostgresArticleRepository) MarkArticlesRead(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.Exec(`
		UPDATE articles SET is_read = TRUE WHERE id = ANY($1)
	`, pq.Array(ids))

	if err != nil {
		return fmt.Errorf("failed to mark articles read: %w", err)
	}

	return nil
}

// ArchiveOlderThan archives a user's unread, unarchived articles published
// before the cutoff. Returns the number of rows changed.
func (r *PostgresArticleRepository) ArchiveOlderThan(userID string, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE articles
		SET is_archived = TRUE
		WHERE user_id = $1
		  AND is_read = FALSE
		  AND is_archived = FALSE
		  AND published_at < $2
	`, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to archive articles: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count archived articles: %w", err)
	}

	return affected, nil
}

// GetArticleStats returns article totals across all users
func (r *PostgresArticleRepository) GetArticleStats() (total, unread, archived int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_read = FALSE AND is_archived = FALSE) AS unread,
			COUNT(*) FILTER (WHERE is_archived = TRUE) AS archived
		FROM articles
	`).Scan(&total, &unread, &archived)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get article stats: %w", err)
	}

	return total, unread, archived, nil
}
