package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    hash          TEXT PRIMARY KEY,
    date          TEXT NOT NULL,
    amount        TEXT NOT NULL,
    direction     TEXT NOT NULL,
    description   TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    subcategory   TEXT NOT NULL DEFAULT '',
    bank_balance  TEXT NOT NULL DEFAULT '0',
    reference     TEXT NOT NULL DEFAULT '',
    imported_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS estimates (
    id            TEXT PRIMARY KEY,
    direction     TEXT NOT NULL,
    amount        TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    notes         TEXT NOT NULL DEFAULT '',
    week_index    INTEGER NOT NULL DEFAULT 0,
    recurring     INTEGER NOT NULL DEFAULT 0,
    recurrence    TEXT NOT NULL DEFAULT 'none',
    day_of_month  INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`
