package database

import (
	"time"
)

type SyncStatus string

const (
	SyncStatusOK      SyncStatus = "ok"
	SyncStatusFailing SyncStatus = "failing"
	SyncStatusBroken  SyncStatus = "broken"
)

type RuleOperator string

const (
	OperatorIncludes    RuleOperator = "includes"
	OperatorNotIncludes RuleOperator = "not_includes"
)

type Feed struct {
	ID            string // Database UUID
	UserID        string
	Title         string
	Description   string
	SiteURL       string // Homepage URL from the feed's <link> element
	FeedURL       string // RSS/Atom XML URL
	IconURL       string
	ETag          string // Cached HTTP validators for conditional fetches
	LastModified  string
	LastSyncAt    *time.Time // Last sync attempt, successful or not
	LastSuccessAt *time.Time
	SyncStatus    SyncStatus
	SyncFailCount int
	SyncError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Article struct {
	ID          string
	UserID      string
	FeedID      *string // nil for user-saved articles created outside sync
	GUID        *string // nil means the source provided no identifier; such items are never deduplicated
	Title       string
	Content     string
	Description string
	URL         *string
	Author      *string
	PublishedAt time.Time
	IsRead      bool
	IsArchived  bool
	CreatedAt   time.Time
}

type FilterRule struct {
	ID        string
	FeedID    string
	Pattern   string
	Operator  RuleOperator
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Tag struct {
	ID     string
	UserID string
	Name   string
}

type Settings struct {
	UserID          string
	AutoArchiveDays *int // nil means use the system default
}
