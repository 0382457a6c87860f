package source

import (
	"fmt"
	"strings"
)

const (
	noTitle        = "(no title)"
	hnItemPageBase = "https://news.ycombinator.com/item?id="
)

// FormatFeedItem renders a feed entry as a Markdown message.
func FormatFeedItem(item Item) string {
	title := item.Title
	if title == "" {
		title = noTitle
	}

	lines := []string{fmt.Sprintf("#### [%s](%s)", title, item.URL)}
	if item.Body != "" {
		lines = append(lines, "\n"+item.Body)
	}

	var meta []string
	if item.Author != "" {
		meta = append(meta, fmt.Sprintf("by **%s**", item.Author))
	}
	if item.Published != "" {
		meta = append(meta, item.Published)
	}
	if len(meta) > 0 {
		lines = append(lines, "\n> "+strings.Join(meta, " | "))
	}

	return strings.Join(lines, "\n")
}

// FormatHackerNewsItem renders a ranked story with its score and a link to
// the discussion page. Stories without an external URL (Ask HN and the
// like) link their title to the discussion page too.
func FormatHackerNewsItem(item Item) string {
	title := item.Title
	if title == "" {
		title = noTitle
	}
	comments := HackerNewsItemURL(item.ID)
	link := item.URL
	if link == "" {
		link = comments
	}

	meta := []string{fmt.Sprintf("%d points", item.Score)}
	if item.Author != "" {
		meta = append(meta, fmt.Sprintf("by **%s**", item.Author))
	}
	meta = append(meta, fmt.Sprintf("[%d comments](%s)", item.Comments, comments))

	return fmt.Sprintf("#### [%s](%s)\n> %s", title, link, strings.Join(meta, " | "))
}

// HackerNewsItemURL returns the discussion page for a story id.
func HackerNewsItemURL(id string) string {
	return hnItemPageBase + id
}
