package database

import (
	"fmt"
)

var _ RuleRepository = (*PostgresRuleRepository)(nil)

// PostgresRuleRepository handles database operations for filter rules
type PostgresRuleRepository struct {
	db *DB
}

func NewRuleRepository(db *DB) *PostgresRuleRepository {
	return &PostgresRuleRepository{db: db}
}

// GetActiveRules returns a feed's active filter rules
func (r *PostgresRuleRepository) GetActiveRules(feedID string) ([]FilterRule, error) {
	rows, err := r.db.Query(`
		SELECT id, feed_id, pattern, operator, is_active, created_at, updated_at
		FROM filter_rules
		WHERE feed_id = $1 AND is_active = TRUE
	`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active rules: %w", err)
	}
	defer rows.Close()

	var rules []FilterRule
	for rows.Next() {
		var rule FilterRule
		err := rows.Scan(
			&rule.ID, &rule.FeedID, &rule.Pattern, &rule.Operator,
			&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}

	return rules, nil
}
