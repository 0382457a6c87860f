package store

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id     TEXT NOT NULL,
    source       TEXT NOT NULL,
    state_key    TEXT NOT NULL,
    item_id      TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    score        INTEGER NOT NULL DEFAULT 0,
    comments     INTEGER NOT NULL DEFAULT 0,
    delivered_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deliveries_source ON deliveries(source);
CREATE INDEX IF NOT EXISTS idx_deliveries_item ON deliveries(state_key, item_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_delivered_at ON deliveries(delivered_at);
`
