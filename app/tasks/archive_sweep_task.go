package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedloop/feedloop/app/feed"
)

// ArchiveSweepTask archives one user's old unread articles.
type ArchiveSweepTask struct {
	Task
	UserID string

	archiver *feed.Archiver
}

func NewArchiveSweepTask(userID string, archiver *feed.Archiver) *ArchiveSweepTask {
	return &ArchiveSweepTask{
		Task:     NewTask(TaskTypeArchiveSweep, "sweep:"+userID),
		UserID:   userID,
		archiver: archiver,
	}
}

func (t *ArchiveSweepTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.archiver.SweepUser(t.UserID)
	if err != nil {
		return fmt.Errorf("failed to sweep user articles: %w", err)
	}

	slog.Info("Task completed",
		"type", "ArchiveSweep",
		"user_id", t.UserID,
		"duration", t.GetDuration(),
		"archived", result.Archived,
		"cutoff", result.Cutoff)

	return nil
}
