package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedloop/feedloop/app/database"
	"github.com/feedloop/feedloop/app/feed"
)

// SyncFeedTask processes one feed end-to-end: conditional fetch, normalize,
// ingest, health bookkeeping. The feed row is loaded fresh at execution time
// so a stale job payload cannot act on outdated sync state.
type SyncFeedTask struct {
	Task
	UserID string
	FeedID string

	feedRepo database.FeedRepository
	fetcher  *feed.Fetcher
	parser   *feed.Parser
	ingester *feed.Ingester
	health   *feed.HealthTracker
	archiver *feed.Archiver
}

func NewSyncFeedTask(userID, feedID string, feedRepo database.FeedRepository,
	fetcher *feed.Fetcher, parser *feed.Parser, ingester *feed.Ingester,
	health *feed.HealthTracker, archiver *feed.Archiver) *SyncFeedTask {
	task := &SyncFeedTask{
		Task:     NewTask(TaskTypeSyncFeed, userID+":"+feedID),
		UserID:   userID,
		FeedID:   feedID,
		feedRepo: feedRepo,
		fetcher:  fetcher,
		parser:   parser,
		ingester: ingester,
		health:   health,
		archiver: archiver,
	}
	// Re-attempts come from the next scheduler tick, not the retry loop, so
	// one bad tick cannot burn through the broken threshold on its own.
	task.MaxRetries = 0

	return task
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	feedRec, err := t.feedRepo.GetFeed(t.FeedID)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}
	if feedRec == nil {
		slog.Warn("Feed no longer exists, skipping sync", "feed_id", t.FeedID)
		return nil
	}
	if feedRec.SyncStatus == database.SyncStatusBroken {
		slog.Debug("Feed is broken, skipping sync", "feed", feedRec.Title, "feed_id", feedRec.ID)
		return nil
	}

	result, err := t.fetcher.Run(ctx, feedRec.FeedURL, feedRec.ETag, feedRec.LastModified)
	if err != nil {
		t.health.RecordFailure(feedRec, err)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	if result.NotModified {
		t.health.RecordSuccess(feedRec)
		slog.Info("Task completed",
			"type", "SyncFeed",
			"feed", feedRec.Title,
			"duration", t.GetDuration(),
			"not_modified", true)
		return nil
	}

	doc, err := t.parser.Run(result.Body)
	if err != nil {
		t.health.RecordFailure(feedRec, err)
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now().UTC()
	items := t.parser.Normalize(doc, now)

	days, err := t.archiver.RetentionDays(feedRec.UserID)
	if err != nil {
		t.health.RecordFailure(feedRec, err)
		return fmt.Errorf("failed to load retention setting: %w", err)
	}
	cutoff := feed.ArchiveCutoff(days, now)

	ingestResult, err := t.ingester.Run(items, feedRec.ID, feedRec.UserID, cutoff)
	if err != nil {
		t.health.RecordFailure(feedRec, err)
		return fmt.Errorf("failed to ingest items: %w", err)
	}

	// Metadata and validator writes are secondary bookkeeping; the sync
	// itself already succeeded.
	title := cmp.Or(doc.Metadata.Title, feedRec.Title)
	if err := t.feedRepo.UpdateFeedMetadata(feedRec.ID, title, doc.Metadata.Description, doc.Metadata.IconURL); err != nil {
		slog.Error("Failed to update feed metadata", "feed", feedRec.Title, "feed_id", feedRec.ID, "error", err)
	}
	if err := t.feedRepo.UpdateFetchValidators(feedRec.ID, result.ETag, result.LastModified); err != nil {
		slog.Error("Failed to update fetch validators", "feed", feedRec.Title, "feed_id", feedRec.ID, "error", err)
	}

	t.health.RecordSuccess(feedRec)

	slog.Info("Task completed",
		"type", "SyncFeed",
		"feed", feedRec.Title,
		"duration", t.GetDuration(),
		"total", len(items),
		"created", ingestResult.Created,
		"duplicates", ingestResult.Duplicates,
		"auto_read", ingestResult.AutoRead,
		"archived", ingestResult.Archived)

	return nil
}
