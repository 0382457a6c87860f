package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultFeedURL is the GeekNews feed.
const DefaultFeedURL = "https://feeds.feedburner.com/geeknews-feed"

// Feed polls a single RSS/Atom feed.
type Feed struct {
	client *http.Client
	parser *gofeed.Parser
	url    string
}

// NewFeed creates a new feed adapter for url.
func NewFeed(url string) *Feed {
	if url == "" {
		url = DefaultFeedURL
	}
	return &Feed{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		url:    url,
	}
}

func (f *Feed) Name() SourceType { return SourceFeed }

// StateKey is the feed URL itself.
func (f *Feed) StateKey() string { return f.url }

func (f *Feed) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "newsrelay/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", f.url, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, convertEntry(entry))
	}
	return items, nil
}

// Hydrate is a no-op: feed entries arrive complete.
func (f *Feed) Hydrate(_ context.Context, item Item) (Item, error) {
	return item, nil
}

func (f *Feed) Relevant(Item) bool { return true }

func (f *Feed) Format(item Item) string { return FormatFeedItem(item) }

func convertEntry(entry *gofeed.Item) Item {
	link := entry.Link
	if link == "" && len(entry.Links) > 0 {
		link = entry.Links[0]
	}

	author := ""
	if entry.Author != nil {
		author = entry.Author.Name
	} else if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		author = entry.Authors[0].Name
	}

	body := entry.Content
	if body == "" {
		body = entry.Description
	}

	return Item{
		ID:        EntryID(entry.GUID, link),
		Source:    SourceFeed,
		Title:     entry.Title,
		URL:       link,
		Author:    author,
		Published: entry.Published,
		Body:      HTMLToText(body),
	}
}

// EntryID derives the identifier recorded in seen-state for a feed entry:
// its native id, or its link when the feed omits one.
func EntryID(guid, link string) string {
	if guid != "" {
		return guid
	}
	return link
}
