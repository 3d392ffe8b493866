package feed

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
	sanitizer    *Sanitizer
}

func NewParser(sanitizer *Sanitizer) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    sanitizer,
	}
}

// Run parses a raw feed body into a dialect-tagged document. Bodies that are
// not a feed at all are an error; feeds in a dialect we don't support parse
// into a document that normalizes to zero items.
func (p *Parser) Run(data []byte) (*Document, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	doc := &Document{
		Metadata: Metadata{
			Title:       parsed.Title,
			SiteURL:     parsed.Link,
			Description: parsed.Description,
		},
	}
	if parsed.Image != nil {
		doc.Metadata.IconURL = parsed.Image.URL
	}

	switch parsed.FeedType {
	case "rss":
		doc.Format = FormatRSS
	case "atom":
		doc.Format = FormatAtom
	default:
		return doc, nil
	}

	doc.items = parsed.Items
	return doc, nil
}

// Normalize maps a document's dialect-specific entries into the canonical
// item shape, in document order. Items missing a publication date get now.
func (p *Parser) Normalize(doc *Document, now time.Time) []NormalizedItem {
	if doc.Format == FormatUnknown {
		return nil
	}

	items := make([]NormalizedItem, 0, len(doc.items))
	for _, item := range doc.items {
		items = append(items, p.normalizeItem(item, doc.Format, now))
	}

	return items
}

func (p *Parser) normalizeItem(item *gofeed.Item, format Format, now time.Time) NormalizedItem {
	normalized := NormalizedItem{
		Title:       item.Title,
		PublishedAt: now,
	}

	if item.GUID != "" {
		guid := item.GUID
		normalized.GUID = &guid
	}
	if item.Link != "" {
		link := item.Link
		normalized.URL = &link
	}
	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	}

	content := item.Content
	if format == FormatRSS && content == "" {
		// RSS 2.0 items often carry their whole body in <description>
		content = item.Description
	}
	normalized.Content = p.sanitizer.Run(content)
	normalized.Description = p.sanitizer.Run(item.Description)

	if author := extractAuthor(item); author != "" {
		normalized.Author = &author
	}

	return normalized
}

func extractAuthor(item *gofeed.Item) string {
	var author *gofeed.Person

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0]
	} else if item.Author != nil {
		author = item.Author
	}

	if author == nil {
		return ""
	}

	name := strings.TrimSpace(author.Name)
	email := strings.TrimSpace(author.Email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	}
	return email
}
