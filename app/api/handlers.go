package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedloop/feedloop/app/database"
	"github.com/feedloop/feedloop/app/feed"
	"github.com/feedloop/feedloop/app/tasks"
)

func NewHandler(feedRepo database.FeedRepository, articleRepo database.ArticleRepository,
	ruleApplier *feed.RuleApplier, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		ruleApplier: ruleApplier,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
		health["status"] = "ok"
	} else {
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"queue_size": h.scheduler.QueueSize(),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}

	if total, unread, archived, err := h.articleRepo.GetArticleStats(); err == nil {
		stats["articles"] = total
		stats["unread"] = unread
		stats["archived"] = archived
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	feedList, err := h.feedRepo.ListFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feeds"})
		return
	}

	feeds := make([]map[string]interface{}, 0, len(feedList))
	for _, f := range feedList {
		feeds = append(feeds, map[string]interface{}{
			"id":              f.ID,
			"user_id":         f.UserID,
			"title":           f.Title,
			"feed_url":        f.FeedURL,
			"site_url":        f.SiteURL,
			"sync_status":     f.SyncStatus,
			"sync_fail_count": f.SyncFailCount,
			"sync_error":      f.SyncError,
			"last_sync_at":    f.LastSyncAt,
			"last_success_at": f.LastSuccessAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"feeds": feeds, "count": len(feeds)})
}

// APIRetryFeed resets a feed's failure state so it re-enters scheduling, and
// queues an immediate sync. This is the only way back for a broken feed.
func (h *Handler) APIRetryFeed(c *gin.Context) {
	id := c.Param("id")

	feedRec, err := h.feedRepo.GetFeed(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	if feedRec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	if err := h.feedRepo.ResetSyncHealth(id); err != nil {
		slog.Error("Database error", "operation", "reset_sync_health", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset feed"})
		return
	}

	if err := h.scheduler.EnqueueFeedSync(feedRec.UserID, feedRec.ID); err != nil {
		slog.Warn("Failed to enqueue immediate sync after retry", "feed_id", id, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feed re-admitted to scheduling",
		"feed_id": id,
	})
}

// APIRefilterFeed synchronously re-applies the feed's current active rules to
// its unread articles.
func (h *Handler) APIRefilterFeed(c *gin.Context) {
	id := c.Param("id")

	feedRec, err := h.feedRepo.GetFeed(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	if feedRec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	result, err := h.ruleApplier.Run(id)
	if err != nil {
		slog.Error("Failed to re-apply filter rules", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to re-apply filter rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed_id":                 id,
		"articles_processed":      result.ArticlesProcessed,
		"articles_marked_as_read": result.ArticlesMarkedAsRead,
	})
}
