package seed

import (
	"fmt"
	"log/slog"

	"github.com/feedloop/feedloop/app/database"
)

// Importer registers seed subscriptions, upserting feeds and their tags.
type Importer struct {
	feedRepo database.FeedRepository
	tagRepo  database.TagRepository
}

func NewImporter(feedRepo database.FeedRepository, tagRepo database.TagRepository) *Importer {
	return &Importer{
		feedRepo: feedRepo,
		tagRepo:  tagRepo,
	}
}

// Run registers every subscription in the file. One bad subscription is
// logged and skipped; it does not abort the rest of the import.
func (im *Importer) Run(file *File) (int, error) {
	if file == nil || len(file.Subscriptions) == 0 {
		return 0, nil
	}

	registered := 0
	for _, sub := range file.Subscriptions {
		feedID, created, err := im.feedRepo.UpsertFeed(sub.User, sub.URL, sub.SiteURL, sub.Title)
		if err != nil {
			slog.Warn("Failed to register seed subscription", "user", sub.User, "url", sub.URL, "error", err)
			continue
		}

		if err := im.tagSubscription(sub, feedID); err != nil {
			slog.Warn("Failed to tag seed subscription", "user", sub.User, "url", sub.URL, "error", err)
		}

		slog.Debug("Registered seed subscription",
			"user", sub.User, "url", sub.URL, "feed_id", feedID, "created", created)
		registered++
	}

	return registered, nil
}

func (im *Importer) tagSubscription(sub Subscription, feedID string) error {
	for _, name := range sub.Tags {
		tagID, err := im.tagRepo.EnsureTag(sub.User, name)
		if err != nil {
			return fmt.Errorf("failed to ensure tag %q: %w", name, err)
		}
		if err := im.tagRepo.TagFeed(feedID, tagID); err != nil {
			return fmt.Errorf("failed to tag feed with %q: %w", name, err)
		}
	}
	return nil
}
