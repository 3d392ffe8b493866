package feed

import (
	"fmt"
	"time"

	"github.com/feedloop/feedloop/app/database"
)

// DefaultAutoArchiveDays is the retention window used when a user has no
// explicit setting.
const DefaultAutoArchiveDays = 30

// Archiver bulk-archives a user's old unread articles.
type Archiver struct {
	articleRepo  database.ArticleRepository
	settingsRepo database.SettingsRepository
}

func NewArchiver(articleRepo database.ArticleRepository, settingsRepo database.SettingsRepository) *Archiver {
	return &Archiver{
		articleRepo:  articleRepo,
		settingsRepo: settingsRepo,
	}
}

type SweepResult struct {
	Archived int64
	Cutoff   time.Time
}

// ArchiveCutoff computes the archive cutoff for the given retention window.
func ArchiveCutoff(days int, now time.Time) time.Time {
	return now.AddDate(0, 0, -days)
}

// RetentionDays returns the user's configured retention window, falling back
// to the system default.
func (a *Archiver) RetentionDays(userID string) (int, error) {
	settings, err := a.settingsRepo.GetSettings(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}

	if settings == nil || settings.AutoArchiveDays == nil {
		return DefaultAutoArchiveDays, nil
	}
	return *settings.AutoArchiveDays, nil
}

// SweepUser archives the user's unread, unarchived articles published before
// their cutoff in one bulk update. Idempotent for an unchanged cutoff.
func (a *Archiver) SweepUser(userID string) (*SweepResult, error) {
	days, err := a.RetentionDays(userID)
	if err != nil {
		return nil, err
	}

	cutoff := ArchiveCutoff(days, time.Now().UTC())
	archived, err := a.articleRepo.ArchiveOlderThan(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to archive articles: %w", err)
	}

	return &SweepResult{Archived: archived, Cutoff: cutoff}, nil
}
