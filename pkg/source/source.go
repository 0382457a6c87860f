package source

import "context"

// SourceType identifies which platform an item came from.
type SourceType string

const (
	SourceFeed       SourceType = "feed"
	SourceHackerNews SourceType = "hackernews"
)

// Item is the normalized representation shared by all sources.
type Item struct {
	ID        string     `json:"id"`
	Source    SourceType `json:"source"`
	Title     string     `json:"title"`
	URL       string     `json:"url,omitempty"`
	Author    string     `json:"author,omitempty"`
	Published string     `json:"published,omitempty"`
	Body      string     `json:"body,omitempty"`
	Score     int        `json:"score,omitempty"`
	Comments  int        `json:"comments,omitempty"`
	Dead      bool       `json:"dead,omitempty"`
	Deleted   bool       `json:"deleted,omitempty"`
}

// Gone reports whether the upstream source flagged the item as dead or deleted.
func (i Item) Gone() bool { return i.Dead || i.Deleted }

// Source is the interface every adapter must implement.
//
// Fetch returns the current item set in source-native order (newest first).
// Items it returns may be stubs; Hydrate completes them and is only called
// for items that survived dedup.
type Source interface {
	Name() SourceType
	StateKey() string
	Fetch(ctx context.Context) ([]Item, error)
	Hydrate(ctx context.Context, item Item) (Item, error)
	Relevant(item Item) bool
	Format(item Item) string
}

// ParseSourceType returns the SourceType named s, or false when no adapter
// has that name.
func ParseSourceType(s string) (SourceType, bool) {
	for _, t := range AllSourceTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceFeed,
		SourceHackerNews,
	}
}
