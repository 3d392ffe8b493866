package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// The scheduler owns the worker pool and the recurring triggers; callers can
// additionally enqueue work directly (e.g. an immediate sync after a manual
// retry).
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueFeedSync(userID, feedID string) error
	QueueSize() int
}
