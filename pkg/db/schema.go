package db

const (
	// SchemaV2 creates every table of the journaldb component. Columns added
	// after version 1 are not listed here; they are applied by columnMigrations
	// so fresh and upgraded databases follow the same path.
	SchemaV2 = `
CREATE TABLE IF NOT EXISTS daybook_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS moods (
    id INTEGER PRIMARY KEY,
    name VARCHAR(64) NOT NULL,
    category VARCHAR(32) NOT NULL,
    UNIQUE (name, category)
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_date TEXT NOT NULL UNIQUE,
    title VARCHAR(256) NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    primary_mood_id INTEGER NOT NULL REFERENCES moods(id),
    secondary_mood1_id INTEGER REFERENCES moods(id),
    secondary_mood2_id INTEGER REFERENCES moods(id),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(256) NOT NULL UNIQUE COLLATE NOCASE,
    is_prebuilt BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS entry_tags (
    entry_id INTEGER NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
    tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (entry_id, tag_id)
);

CREATE INDEX IF NOT EXISTS entry_tags_by_tag ON entry_tags(tag_id);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username VARCHAR(256) NOT NULL DEFAULT '',
    pin_hash TEXT,
    created_at TIMESTAMP NOT NULL
);
`
)

type columnMigration struct {
	Table      string
	Column     string
	Definition string
}

// columnMigrations are additive ALTERs checked on every initialization.
var columnMigrations = []columnMigration{
	{Table: "tags", Column: "category", Definition: "TEXT NOT NULL DEFAULT ''"},
	{Table: "journal_entries", Column: "category", Definition: "TEXT NOT NULL DEFAULT ''"},
}
