package tasks

import (
	"context"
	"time"

	"github.com/feedloop/feedloop/app/database"
)

type fakeFeedRepo struct {
	database.FeedRepository

	feeds    map[string]*database.Feed
	due      []database.Feed
	userIDs  []string
	dueLimit int

	metadataTitle string
	etag          string
	lastModified  string

	successID     string
	failureID     string
	failureStatus database.SyncStatus
	failureCount  int
}

func (f *fakeFeedRepo) GetFeed(id string) (*database.Feed, error) {
	return f.feeds[id], nil
}

func (f *fakeFeedRepo) GetFeedsDueForSync(limit int) ([]database.Feed, error) {
	f.dueLimit = limit
	return f.due, nil
}

func (f *fakeFeedRepo) ListUserIDs() ([]string, error) {
	return f.userIDs, nil
}

func (f *fakeFeedRepo) UpdateFeedMetadata(id, title, description, iconURL string) error {
	f.metadataTitle = title
	return nil
}

func (f *fakeFeedRepo) UpdateFetchValidators(id, etag, lastModified string) error {
	f.etag = etag
	f.lastModified = lastModified
	return nil
}

func (f *fakeFeedRepo) MarkSyncSuccess(id string, at time.Time) error {
	f.successID = id
	return nil
}

func (f *fakeFeedRepo) MarkSyncFailure(id string, status database.SyncStatus, failCount int, message string, at time.Time) error {
	f.failureID = id
	f.failureStatus = status
	f.failureCount = failCount
	return nil
}

type fakeArticleRepo struct {
	database.ArticleRepository

	inserted []database.Article
	archived int64
}

func (f *fakeArticleRepo) GetExistingGUIDs(feedID string, guids []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeArticleRepo) InsertArticle(article database.Article) (string, error) {
	f.inserted = append(f.inserted, article)
	return "article-1", nil
}

func (f *fakeArticleRepo) ArchiveOlderThan(userID string, cutoff time.Time) (int64, error) {
	return f.archived, nil
}

type fakeRuleRepo struct {
	database.RuleRepository
}

func (f *fakeRuleRepo) GetActiveRules(feedID string) ([]database.FilterRule, error) {
	return nil, nil
}

type fakeTagRepo struct {
	database.TagRepository
}

func (f *fakeTagRepo) GetFeedTagIDs(feedID string) ([]string, error) {
	return nil, nil
}

func (f *fakeTagRepo) TagArticle(articleID string, tagIDs []string) error {
	return nil
}

type fakeSettingsRepo struct {
	database.SettingsRepository
}

func (f *fakeSettingsRepo) GetSettings(userID string) (*database.Settings, error) {
	return nil, nil
}

// stubTask is a minimal task for exercising the queue machinery.
type stubTask struct {
	Task
	executeErr error
	executions int
}

func newStubTask(key string, maxRetries int, executeErr error) *stubTask {
	task := &stubTask{
		Task:       NewTask(TaskType("stub"), key),
		executeErr: executeErr,
	}
	task.MaxRetries = maxRetries
	return task
}

func (t *stubTask) Execute(ctx context.Context) error {
	t.executions++
	return t.executeErr
}
