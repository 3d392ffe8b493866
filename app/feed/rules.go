package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/feedloop/feedloop/app/database"
)

// EvaluateRule reports whether a single rule matches a title. Matching is a
// case-insensitive (Unicode case-folded) substring test.
func EvaluateRule(rule database.FilterRule, title string) bool {
	folder := cases.Fold()
	matched := strings.Contains(folder.String(title), folder.String(rule.Pattern))

	switch rule.Operator {
	case database.OperatorIncludes:
		return matched
	case database.OperatorNotIncludes:
		return !matched
	default:
		return false
	}
}

// ShouldMarkAsRead reports whether at least one active rule matches the
// title. Inactive rules never contribute; an empty rule set never matches.
func ShouldMarkAsRead(rules []database.FilterRule, title string) bool {
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if EvaluateRule(rule, title) {
			return true
		}
	}
	return false
}

// RuleApplier re-applies a feed's current active rules to its stored unread
// articles. Re-running with the same rules never un-marks an article.
type RuleApplier struct {
	articleRepo database.ArticleRepository
	ruleRepo    database.RuleRepository
}

func NewRuleApplier(articleRepo database.ArticleRepository, ruleRepo database.RuleRepository) *RuleApplier {
	return &RuleApplier{
		articleRepo: articleRepo,
		ruleRepo:    ruleRepo,
	}
}

type ApplyResult struct {
	ArticlesProcessed    int
	ArticlesMarkedAsRead int
}

func (a *RuleApplier) Run(feedID string) (*ApplyResult, error) {
	rules, err := a.ruleRepo.GetActiveRules(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter rules: %w", err)
	}

	articles, err := a.articleRepo.GetUnreadArticles(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unread articles: %w", err)
	}

	result := &ApplyResult{ArticlesProcessed: len(articles)}
	if len(rules) == 0 || len(articles) == 0 {
		return result, nil
	}

	var matched []string
	for _, article := range articles {
		if ShouldMarkAsRead(rules, article.Title) {
			matched = append(matched, article.ID)
		}
	}

	if err := a.articleRepo.MarkArticlesRead(matched); err != nil {
		return nil, fmt.Errorf("failed to mark articles read: %w", err)
	}

	result.ArticlesMarkedAsRead = len(matched)
	return result, nil
}
