package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(id string) (*Feed, error)
	GetFeedsDueForSync(limit int) ([]Feed, error)
	ListFeeds() ([]Feed, error)
	ListUserIDs() ([]string, error)
	GetFeedCount() (int, error)

	UpsertFeed(userID, feedURL, siteURL, title string) (string, bool, error)
	UpdateFeedMetadata(id, title, description, iconURL string) error
	UpdateFetchValidators(id, etag, lastModified string) error

	MarkSyncSuccess(id string, at time.Time) error
	MarkSyncFailure(id string, status SyncStatus, failCount int, message string, at time.Time) error
	ResetSyncHealth(id string) error
}

type ArticleRepository interface {
	GetExistingGUIDs(feedID string, guids []string) (map[string]bool, error)
	InsertArticle(article Article) (string, error)

	GetUnreadArticles(feedID string) ([]Article, error)
	MarkArticlesRead(ids []string) error
	ArchiveOlderThan(userID string, cutoff time.Time) (int64, error)

	GetArticleStats() (total, unread, archived int, err error)
}

type RuleRepository interface {
	GetActiveRules(feedID string) ([]FilterRule, error)
}

type TagRepository interface {
	EnsureTag(userID, name string) (string, error)
	TagFeed(feedID, tagID string) error
	GetFeedTagIDs(feedID string) ([]string, error)
	TagArticle(articleID string, tagIDs []string) error
}

type SettingsRepository interface {
	GetSettings(userID string) (*Settings, error)
}
