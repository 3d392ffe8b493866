package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/feedloop/feedloop/app/database"
	"github.com/feedloop/feedloop/app/feed"
)

const (
	// MaxFeedsPerTick bounds burst load on the worker pool per orchestrator
	// tick, regardless of how many subscriptions are stale.
	MaxFeedsPerTick = 50

	syncCronSpec  = "* * * * *"
	sweepCronSpec = "0 0 * * *"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	feedRepo    database.FeedRepository
	fetcher     *feed.Fetcher
	parser      *feed.Parser
	ingester    *feed.Ingester
	health      *feed.HealthTracker
	archiver    *feed.Archiver
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	cron        *cron.Cron

	mu       sync.Mutex
	inflight map[string]bool
	started  bool
}

func NewScheduler(feedRepo database.FeedRepository, fetcher *feed.Fetcher, parser *feed.Parser,
	ingester *feed.Ingester, health *feed.HealthTracker, archiver *feed.Archiver,
	workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		feedRepo:    feedRepo,
		fetcher:     fetcher,
		parser:      parser,
		ingester:    ingester,
		health:      health,
		archiver:    archiver,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		cron:        cron.New(),
		inflight:    make(map[string]bool),
	}
}

// Start launches the worker pool and the recurring triggers: stale-feed
// selection every minute and the per-user archive sweep daily at midnight.
// Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.cron.AddFunc(syncCronSpec, s.enqueueStaleFeeds)
	s.cron.AddFunc(sweepCronSpec, s.enqueueArchiveSweeps)
	s.cron.Start()

	// Pick up feeds that went stale while the process was down
	s.enqueueStaleFeeds()
}

// Stop halts the recurring triggers, waits for any cron-fired enqueue still
// running, then winds down the worker pool. The task queue stays open; idle
// workers exit through the scheduler context instead.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask adds a task unless one with the same key is already queued or
// running; duplicate enqueues collapse silently. A stopped scheduler rejects
// all new work.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.inflight[task.GetKey()] {
		s.mu.Unlock()
		slog.Debug("Collapsed duplicate task", "type", string(task.GetType()), "key", task.GetKey())
		return nil
	}
	s.inflight[task.GetKey()] = true
	s.mu.Unlock()

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		s.release(task.GetKey())
		return s.ctx.Err()
	default:
		s.release(task.GetKey())
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueFeedSync queues an immediate sync of one feed.
func (s *Scheduler) EnqueueFeedSync(userID, feedID string) error {
	task := NewSyncFeedTask(userID, feedID, s.feedRepo, s.fetcher, s.parser, s.ingester, s.health, s.archiver)
	return s.EnqueueTask(task)
}

func (s *Scheduler) QueueSize() int {
	return len(s.taskQueue)
}

func (s *Scheduler) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// enqueueStaleFeeds selects non-broken feeds whose last sync attempt is
// missing or stale, longest-neglected first, and queues one sync job each.
func (s *Scheduler) enqueueStaleFeeds() {
	feeds, err := s.feedRepo.GetFeedsDueForSync(MaxFeedsPerTick)
	if err != nil {
		slog.Error("Failed to get feeds due for sync", "error", err)
		return
	}

	if len(feeds) == 0 {
		slog.Debug("No feeds due for sync")
		return
	}

	// Re-check each row between selection and enqueue; the query's predicate
	// and ordering are mirrored in Go so rows that changed underneath the
	// selection are skipped rather than enqueued.
	now := time.Now().UTC()
	database.OrderBySyncPriority(feeds)

	enqueued := 0
	for i := range feeds {
		if enqueued >= MaxFeedsPerTick {
			break
		}
		if !database.DueForSync(&feeds[i], now) {
			continue
		}

		if err := s.EnqueueFeedSync(feeds[i].UserID, feeds[i].ID); err != nil {
			slog.Warn("Failed to enqueue feed sync", "feed", feeds[i].Title, "feed_id", feeds[i].ID, "error", err)
			continue
		}
		enqueued++
	}

	slog.Debug("Enqueued stale feeds", "count", enqueued)
}

// enqueueArchiveSweeps queues one sweep per user; the archive cutoff is a
// per-user setting and cannot be computed globally.
func (s *Scheduler) enqueueArchiveSweeps() {
	userIDs, err := s.feedRepo.ListUserIDs()
	if err != nil {
		slog.Error("Failed to list users for archive sweep", "error", err)
		return
	}

	for _, userID := range userIDs {
		task := NewArchiveSweepTask(userID, s.archiver)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue archive sweep", "user_id", userID, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, feed.FetchTimeout*2)
	defer cancel()

	err := task.Execute(taskCtx)

	// Release before any retry enqueue, or the retry would collapse against
	// this very execution's inflight entry.
	s.release(task.GetKey())

	if err == nil {
		return
	}

	slog.Error("Worker task execution failed",
		"worker_id", workerID, "type", string(task.GetType()), "key", task.GetKey(),
		"retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		return
	}

	task.IncrementRetryCount()

	select {
	case <-s.ctx.Done():
	default:
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry",
				"type", string(task.GetType()), "key", task.GetKey(), "error", retryErr)
		}
	}
}
