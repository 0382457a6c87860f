package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/newsrelay/pkg/source"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "journal", "newsrelay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListDeliveries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	records := []Delivery{
		{CycleID: "c1", Source: source.SourceFeed, StateKey: "https://feed", ItemID: "a", Title: "A", DeliveredAt: base},
		{CycleID: "c1", Source: source.SourceHackerNews, StateKey: "hackernews_top", ItemID: "1", Title: "One", Score: 90, Comments: 20, DeliveredAt: base.Add(time.Minute)},
		{CycleID: "c2", Source: source.SourceFeed, StateKey: "https://feed", ItemID: "b", Title: "B", DeliveredAt: base.Add(2 * time.Minute)},
	}
	for i := range records {
		require.NoError(t, s.RecordDelivery(ctx, &records[i]))
		assert.NotZero(t, records[i].ID)
	}

	all, err := s.ListDeliveries(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].ItemID, "newest first")
	assert.Equal(t, "a", all[2].ItemID)

	hn, err := s.ListDeliveries(ctx, ListOpts{Source: source.SourceHackerNews})
	require.NoError(t, err)
	require.Len(t, hn, 1)
	assert.Equal(t, "One", hn[0].Title)
	assert.Equal(t, 90, hn[0].Score)
	assert.Equal(t, 20, hn[0].Comments)
	assert.Equal(t, "hackernews_top", hn[0].StateKey)

	recent, err := s.ListDeliveries(ctx, ListOpts{Since: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "b", recent[0].ItemID)

	limited, err := s.ListDeliveries(ctx, ListOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordDelivery_DefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	d := &Delivery{CycleID: "c", Source: source.SourceFeed, StateKey: "k", ItemID: "x"}

	require.NoError(t, s.RecordDelivery(context.Background(), d))
	assert.False(t, d.DeliveredAt.IsZero())
}

func TestCountBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, s.RecordDelivery(ctx, &Delivery{CycleID: "c", Source: source.SourceFeed, StateKey: "k", ItemID: id}))
	}
	require.NoError(t, s.RecordDelivery(ctx, &Delivery{CycleID: "c", Source: source.SourceHackerNews, StateKey: "hn", ItemID: "1"}))

	counts, err := s.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[source.SourceFeed])
	assert.Equal(t, 1, counts[source.SourceHackerNews])
}

func TestListDeliveries_Empty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListDeliveries(context.Background(), ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
