package database

// SQLiteSchema mirrors migrations/ for the embedded SQLite backend
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS user_counters (
    email              TEXT PRIMARY KEY,
    ideas_generated    INTEGER NOT NULL DEFAULT 0 CHECK (ideas_generated >= 0),
    articles_generated INTEGER NOT NULL DEFAULT 0 CHECK (articles_generated >= 0),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);
`
