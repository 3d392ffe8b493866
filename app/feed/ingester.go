package feed

import (
	"fmt"
	"time"

	"github.com/feedloop/feedloop/app/database"
)

// Ingester persists a batch of normalized items for one feed, deduplicating
// against previously stored articles by GUID. Items without a GUID are always
// treated as new, so a redelivered batch can duplicate them.
type Ingester struct {
	articleRepo database.ArticleRepository
	ruleRepo    database.RuleRepository
	tagRepo     database.TagRepository
}

func NewIngester(articleRepo database.ArticleRepository, ruleRepo database.RuleRepository,
	tagRepo database.TagRepository) *Ingester {
	return &Ingester{
		articleRepo: articleRepo,
		ruleRepo:    ruleRepo,
		tagRepo:     tagRepo,
	}
}

type IngestResult struct {
	Created    int
	Duplicates int
	AutoRead   int
	Archived   int
}

// Run ingests one batch. Dedup state, filter rules, and the feed's tag set
// are each loaded once for the whole batch. Items published before the
// archive cutoff are stored already archived instead of appearing and then
// vanishing on the next sweep. Inserts are per-item atomic; a failure leaves
// earlier inserts in place and relies on GUID dedup to make a retry safe.
func (in *Ingester) Run(items []NormalizedItem, feedID, userID string, archiveCutoff time.Time) (*IngestResult, error) {
	result := &IngestResult{}
	if len(items) == 0 {
		return result, nil
	}

	var guids []string
	for _, item := range items {
		if item.GUID != nil {
			guids = append(guids, *item.GUID)
		}
	}

	existing, err := in.articleRepo.GetExistingGUIDs(feedID, guids)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing articles: %w", err)
	}

	rules, err := in.ruleRepo.GetActiveRules(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter rules: %w", err)
	}

	tagIDs, err := in.tagRepo.GetFeedTagIDs(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed tags: %w", err)
	}

	for _, item := range items {
		if item.GUID != nil && existing[*item.GUID] {
			result.Duplicates++
			continue
		}

		isRead := ShouldMarkAsRead(rules, item.Title)
		isArchived := item.PublishedAt.Before(archiveCutoff)

		article := database.Article{
			UserID:      userID,
			FeedID:      &feedID,
			GUID:        item.GUID,
			Title:       item.Title,
			Content:     item.Content,
			Description: item.Description,
			URL:         item.URL,
			Author:      item.Author,
			PublishedAt: item.PublishedAt,
			IsRead:      isRead,
			IsArchived:  isArchived,
		}

		id, err := in.articleRepo.InsertArticle(article)
		if err != nil {
			return nil, fmt.Errorf("failed to insert article: %w", err)
		}
		if id == "" {
			// Lost the insert race against a concurrent sync of the same feed
			result.Duplicates++
			continue
		}

		result.Created++
		if isRead {
			result.AutoRead++
		}
		if isArchived {
			result.Archived++
		}

		if err := in.tagRepo.TagArticle(id, tagIDs); err != nil {
			return nil, fmt.Errorf("failed to tag article: %w", err)
		}
	}

	return result, nil
}
