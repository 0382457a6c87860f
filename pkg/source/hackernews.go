package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultHackerNewsAPI is the public Firebase API base.
	DefaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"

	// HackerNewsStateKey is the seen-state key for top stories.
	HackerNewsStateKey = "hackernews_top"
)

// HackerNewsOptions configures the ranked-item adapter.
type HackerNewsOptions struct {
	BaseURL   string
	Limit     int     // top-N ids considered per poll
	MinScore  int     // score + comments threshold
	RateLimit float64 // item detail requests per second, 0 = unlimited
}

// HackerNews polls the top stories ranking and fetches story details lazily.
type HackerNews struct {
	client   *http.Client
	baseURL  string
	limit    int
	minScore int
	limiter  *rate.Limiter
}

// NewHackerNews creates a new HN adapter.
func NewHackerNews(opts HackerNewsOptions) *HackerNews {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultHackerNewsAPI
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &HackerNews{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  opts.BaseURL,
		limit:    opts.Limit,
		minScore: opts.MinScore,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (h *HackerNews) Name() SourceType { return SourceHackerNews }

func (h *HackerNews) StateKey() string { return HackerNewsStateKey }

// Fetch returns the current ranking as stub items carrying only their ID,
// in rank order.
func (h *HackerNews) Fetch(ctx context.Context) ([]Item, error) {
	ids, err := h.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: strconv.Itoa(id), Source: SourceHackerNews}
	}
	return items, nil
}

// Hydrate fetches the full story for a stub. A story the API no longer
// knows about comes back flagged as deleted.
func (h *HackerNews) Hydrate(ctx context.Context, item Item) (Item, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return item, fmt.Errorf("wait hn rate limit: %w", err)
	}

	story, err := h.fetchItem(ctx, item.ID)
	if err != nil {
		return item, err
	}
	if story == nil {
		item.Deleted = true
		return item, nil
	}

	item.Title = story.Title
	item.URL = story.URL
	item.Author = story.By
	item.Score = story.Score
	item.Comments = story.Descendants
	item.Dead = story.Dead
	item.Deleted = story.Deleted
	if story.Time > 0 {
		item.Published = time.Unix(story.Time, 0).UTC().Format(time.RFC3339)
	}
	return item, nil
}

func (h *HackerNews) Relevant(item Item) bool {
	return MeetsThreshold(item, h.minScore)
}

func (h *HackerNews) Format(item Item) string { return FormatHackerNewsItem(item) }

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
}

func (h *HackerNews) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create hn request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn top stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn top stories status %d", resp.StatusCode)
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode hn top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) fetchItem(ctx context.Context, id string) (*hnStory, error) {
	url := fmt.Sprintf("%s/item/%s.json", h.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create hn item request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn item %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn item %s status %d", id, resp.StatusCode)
	}

	// The API answers "null" for ids it does not know.
	var story *hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("decode hn item %s: %w", id, err)
	}
	return story, nil
}
