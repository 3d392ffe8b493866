package feed

import (
	"time"

	"github.com/mmcdole/gofeed"
)

// Format tags the wire dialect a fetched document arrived in.
type Format string

const (
	FormatRSS     Format = "rss"
	FormatAtom    Format = "atom"
	FormatUnknown Format = ""
)

type Metadata struct {
	Title       string
	SiteURL     string
	Description string
	IconURL     string
}

// Document is the parsed form of one fetched feed body. Documents in an
// unknown dialect carry metadata but normalize to zero items.
type Document struct {
	Format   Format
	Metadata Metadata

	items []*gofeed.Item
}

// NormalizedItem is the canonical item shape shared by both dialects.
// A nil GUID means the source provided no identifier.
type NormalizedItem struct {
	GUID        *string
	Title       string
	Content     string
	Description string
	URL         *string
	Author      *string
	PublishedAt time.Time
}
