package feed

import (
	"fmt"
	"time"

	"github.com/feedloop/feedloop/app/database"
)

// Repository fakes embed the interfaces so each test only implements the
// methods it exercises; calling anything else panics with a nil pointer.

type fakeArticleRepo struct {
	database.ArticleRepository

	existing   map[string]bool
	inserted   []database.Article
	unread     []database.Article
	markedRead []string
	archived   int64

	guidQueries   [][]string
	insertErr     error
	archiveCutoff time.Time
	lostRaceGUIDs map[string]bool
}

func (f *fakeArticleRepo) GetExistingGUIDs(feedID string, guids []string) (map[string]bool, error) {
	f.guidQueries = append(f.guidQueries, guids)

	result := make(map[string]bool)
	for _, guid := range guids {
		if f.existing[guid] {
			result[guid] = true
		}
	}
	return result, nil
}

func (f *fakeArticleRepo) InsertArticle(article database.Article) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	if article.GUID != nil && f.lostRaceGUIDs[*article.GUID] {
		return "", nil
	}

	f.inserted = append(f.inserted, article)
	return fmt.Sprintf("article-%d", len(f.inserted)), nil
}

func (f *fakeArticleRepo) GetUnreadArticles(feedID string) ([]database.Article, error) {
	return f.unread, nil
}

func (f *fakeArticleRepo) MarkArticlesRead(ids []string) error {
	f.markedRead = ids
	return nil
}

func (f *fakeArticleRepo) ArchiveOlderThan(userID string, cutoff time.Time) (int64, error) {
	f.archiveCutoff = cutoff
	return f.archived, nil
}

type fakeRuleRepo struct {
	database.RuleRepository

	rules []database.FilterRule
	calls int
}

func (f *fakeRuleRepo) GetActiveRules(feedID string) ([]database.FilterRule, error) {
	f.calls++
	return f.rules, nil
}

type fakeTagRepo struct {
	database.TagRepository

	feedTagIDs  []string
	taggedItems map[string][]string
}

func (f *fakeTagRepo) GetFeedTagIDs(feedID string) ([]string, error) {
	return f.feedTagIDs, nil
}

func (f *fakeTagRepo) TagArticle(articleID string, tagIDs []string) error {
	if f.taggedItems == nil {
		f.taggedItems = make(map[string][]string)
	}
	f.taggedItems[articleID] = tagIDs
	return nil
}

type fakeFeedRepo struct {
	database.FeedRepository

	successID string
	successAt time.Time

	failureID      string
	failureStatus  database.SyncStatus
	failureCount   int
	failureMessage string

	writeErr error
}

func (f *fakeFeedRepo) MarkSyncSuccess(id string, at time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.successID = id
	f.successAt = at
	return nil
}

func (f *fakeFeedRepo) MarkSyncFailure(id string, status database.SyncStatus, failCount int, message string, at time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.failureID = id
	f.failureStatus = status
	f.failureCount = failCount
	f.failureMessage = message
	return nil
}

type fakeSettingsRepo struct {
	database.SettingsRepository

	settings *database.Settings
}

func (f *fakeSettingsRepo) GetSettings(userID string) (*database.Settings, error) {
	return f.settings, nil
}
