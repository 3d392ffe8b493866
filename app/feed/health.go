package feed

import (
	"log/slog"
	"time"

	"github.com/feedloop/feedloop/app/database"
)

const (
	// BrokenThreshold is the consecutive-failure count at which a feed is
	// excluded from scheduling until an explicit retry.
	BrokenThreshold = 3

	maxSyncErrorLen = 1000
)

// NextFailureState returns the sync status and fail count after one more
// failure on a feed currently at failCount.
func NextFailureState(failCount int) (database.SyncStatus, int) {
	failCount++
	if failCount >= BrokenThreshold {
		return database.SyncStatusBroken, failCount
	}
	return database.SyncStatusFailing, failCount
}

// TruncateSyncError limits a failure message to what the sync_error column
// is expected to hold.
func TruncateSyncError(message string) string {
	if len(message) > maxSyncErrorLen {
		return message[:maxSyncErrorLen]
	}
	return message
}

// HealthTracker updates a feed's sync bookkeeping after each attempt.
// Writes are best-effort: a failed health update is logged but never
// propagated, so a secondary failure cannot mask the primary outcome.
type HealthTracker struct {
	feedRepo database.FeedRepository
}

func NewHealthTracker(feedRepo database.FeedRepository) *HealthTracker {
	return &HealthTracker{feedRepo: feedRepo}
}

// RecordSuccess resets failure state after a successful attempt. A 304
// short-circuit counts as success.
func (h *HealthTracker) RecordSuccess(feed *database.Feed) {
	if err := h.feedRepo.MarkSyncSuccess(feed.ID, time.Now().UTC()); err != nil {
		slog.Error("Failed to record sync success",
			"feed", feed.Title, "feed_id", feed.ID, "url", feed.FeedURL, "error", err)
	}
}

// RecordFailure advances the fail count and marks the feed failing or broken.
func (h *HealthTracker) RecordFailure(feed *database.Feed, syncErr error) {
	status, failCount := NextFailureState(feed.SyncFailCount)
	message := TruncateSyncError(syncErr.Error())

	if err := h.feedRepo.MarkSyncFailure(feed.ID, status, failCount, message, time.Now().UTC()); err != nil {
		slog.Error("Failed to record sync failure",
			"feed", feed.Title, "feed_id", feed.ID, "url", feed.FeedURL, "error", err)
	}
}
