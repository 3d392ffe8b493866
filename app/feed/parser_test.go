package feed

import (
	"strings"
	"testing"
	"time"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <link>https://example.com</link>
    <description>A blog about examples</description>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Example Blog</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>First Post</title>
      <link>https://example.com/posts/1</link>
      <guid>post-1</guid>
      <description>&lt;p&gt;Hello &lt;script&gt;alert(1)&lt;/script&gt;world&lt;/p&gt;</description>
      <author>alice@example.com (Alice)</author>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Undated Post</title>
      <link>https://example.com/posts/2</link>
    </item>
  </channel>
</rss>`

const atomSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Feed</title>
  <link href="https://example.org/"/>
  <updated>2006-01-02T15:04:05Z</updated>
  <id>urn:example-feed</id>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.org/entries/1"/>
    <id>urn:entry-1</id>
    <published>2006-01-02T15:04:05Z</published>
    <author><name>Bob</name></author>
    <content type="html">&lt;p&gt;Entry body&lt;/p&gt;</content>
    <summary>Entry summary</summary>
  </entry>
</feed>`

func TestParserRunRSS(t *testing.T) {
	parser := NewParser(NewSanitizer())

	doc, err := parser.Run([]byte(rssSample))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.Format != FormatRSS {
		t.Errorf("Expected format %q, got %q", FormatRSS, doc.Format)
	}
	if doc.Metadata.Title != "Example Blog" {
		t.Errorf("Expected title %q, got %q", "Example Blog", doc.Metadata.Title)
	}
	if doc.Metadata.SiteURL != "https://example.com" {
		t.Errorf("Expected site URL %q, got %q", "https://example.com", doc.Metadata.SiteURL)
	}
	if doc.Metadata.IconURL != "https://example.com/icon.png" {
		t.Errorf("Expected icon URL to be extracted, got %q", doc.Metadata.IconURL)
	}
}

func TestParserNormalizeRSS(t *testing.T) {
	parser := NewParser(NewSanitizer())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	doc, err := parser.Run([]byte(rssSample))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	items := parser.Normalize(doc, now)
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "First Post" {
		t.Errorf("Expected title %q, got %q", "First Post", first.Title)
	}
	if first.GUID == nil || *first.GUID != "post-1" {
		t.Errorf("Expected GUID %q, got %v", "post-1", first.GUID)
	}
	if first.URL == nil || *first.URL != "https://example.com/posts/1" {
		t.Errorf("Expected URL to be set, got %v", first.URL)
	}
	if first.Author == nil || *first.Author != "alice@example.com (Alice)" {
		t.Errorf("Expected author %q, got %v", "alice@example.com (Alice)", first.Author)
	}

	expectedDate := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !first.PublishedAt.Equal(expectedDate) {
		t.Errorf("Expected published at %v, got %v", expectedDate, first.PublishedAt)
	}

	// RSS items without <content:encoded> fall back to the description
	if first.Content == "" {
		t.Error("Expected content to fall back to description for RSS items")
	}

	second := items[1]
	if second.GUID != nil {
		t.Errorf("Expected nil GUID for item without one, got %q", *second.GUID)
	}
	if !second.PublishedAt.Equal(now) {
		t.Errorf("Expected missing pubDate to default to now, got %v", second.PublishedAt)
	}
}

func TestParserNormalizeSanitizesContent(t *testing.T) {
	parser := NewParser(NewSanitizer())

	doc, err := parser.Run([]byte(rssSample))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	items := parser.Normalize(doc, time.Now())
	if len(items) == 0 {
		t.Fatal("Expected items")
	}

	for _, field := range []string{items[0].Content, items[0].Description} {
		if strings.Contains(field, "<script>") {
			t.Errorf("Expected script tags to be stripped, got %q", field)
		}
	}
}

func TestParserRunUnsupportedDialect(t *testing.T) {
	jsonFeed := `{"version":"https://jsonfeed.org/version/1.1","title":"JSON Feed",` +
		`"items":[{"id":"1","title":"Entry"}]}`

	parser := NewParser(NewSanitizer())

	doc, err := parser.Run([]byte(jsonFeed))
	if err != nil {
		t.Fatalf("Expected no error for a parseable but unsupported dialect, got %v", err)
	}

	if doc.Format != FormatUnknown {
		t.Errorf("Expected unknown format, got %q", doc.Format)
	}
	if items := parser.Normalize(doc, time.Now()); len(items) != 0 {
		t.Errorf("Expected unsupported dialect to normalize to zero items, got %d", len(items))
	}
}

func TestParserRunAtom(t *testing.T) {
	parser := NewParser(NewSanitizer())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	doc, err := parser.Run([]byte(atomSample))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.Format != FormatAtom {
		t.Errorf("Expected format %q, got %q", FormatAtom, doc.Format)
	}

	items := parser.Normalize(doc, now)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	entry := items[0]
	if entry.GUID == nil || *entry.GUID != "urn:entry-1" {
		t.Errorf("Expected GUID from atom id, got %v", entry.GUID)
	}
	if entry.Author == nil || *entry.Author != "Bob" {
		t.Errorf("Expected author %q, got %v", "Bob", entry.Author)
	}
	if entry.Content == "" {
		t.Error("Expected atom content to be mapped")
	}
}

func TestParserRunInvalidBody(t *testing.T) {
	parser := NewParser(NewSanitizer())

	if _, err := parser.Run([]byte("this is not a feed")); err == nil {
		t.Error("Expected an error for a non-feed body")
	}
}
