// Package store keeps an append-only journal of delivered messages.
//
// The journal is an audit trail only. Dedup decisions are made from the
// seen-state file, never from here.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/newsrelay/pkg/source"
)

// Delivery records one successfully delivered item.
type Delivery struct {
	ID          int64             `db:"id" json:"id"`
	CycleID     string            `db:"cycle_id" json:"cycle_id"`
	Source      source.SourceType `db:"source" json:"source"`
	StateKey    string            `db:"state_key" json:"state_key"`
	ItemID      string            `db:"item_id" json:"item_id"`
	Title       string            `db:"title" json:"title"`
	URL         string            `db:"url" json:"url"`
	Score       int               `db:"score" json:"score"`
	Comments    int               `db:"comments" json:"comments"`
	DeliveredAt time.Time         `db:"delivered_at" json:"delivered_at"`
}

// ListOpts controls delivery listing.
type ListOpts struct {
	Source source.SourceType
	Since  time.Time
	Limit  int
}

// Store is the journal interface.
type Store interface {
	RecordDelivery(ctx context.Context, d *Delivery) error
	ListDeliveries(ctx context.Context, opts ListOpts) ([]Delivery, error)
	CountBySource(ctx context.Context) (map[source.SourceType]int, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordDelivery(ctx context.Context, d *Delivery) error {
	if d.DeliveredAt.IsZero() {
		d.DeliveredAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (cycle_id, source, state_key, item_id, title, url, score, comments, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.CycleID, d.Source, d.StateKey, d.ItemID, d.Title, d.URL, d.Score, d.Comments, d.DeliveredAt)
	if err != nil {
		return fmt.Errorf("record delivery %s: %w", d.ItemID, err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListDeliveries(ctx context.Context, opts ListOpts) ([]Delivery, error) {
	query := "SELECT * FROM deliveries WHERE 1=1"
	var args []any

	if opts.Source != "" {
		query += " AND source = ?"
		args = append(args, opts.Source)
	}
	if !opts.Since.IsZero() {
		query += " AND delivered_at >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY delivered_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var deliveries []Delivery
	if err := s.db.SelectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return deliveries, nil
}

func (s *SQLiteStore) CountBySource(ctx context.Context) (map[source.SourceType]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT source, COUNT(*) as cnt FROM deliveries GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("count deliveries by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[source.SourceType]int)
	for rows.Next() {
		var src string
		var cnt int
		if err := rows.Scan(&src, &cnt); err != nil {
			return nil, err
		}
		counts[source.SourceType(src)] = cnt
	}
	return counts, rows.Err()
}
