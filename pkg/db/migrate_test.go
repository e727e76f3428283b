package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDBConnection(filepath.Join(t.TempDir(), "journal.db"), true, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sqlx.DB, tableName string) {
	t.Helper()
	var name string
	err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName)
	if err != nil {
		t.Fatalf("table '%s' does not exist: %v", tableName, err)
	}
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := UpgradeDB(ctx, db, "test", TargetSchemaVersion, zerolog.Nop()); err != nil {
		t.Fatalf("UpgradeDB failed on a new database: %v", err)
	}

	for _, tableName := range []string{"daybook_versions", "moods", "journal_entries", "tags", "entry_tags", "users"} {
		checkTableExists(t, db, tableName)
	}

	version, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("expected version %d, got %d", TargetSchemaVersion, version)
	}

	for _, m := range columnMigrations {
		ok, err := columnExists(ctx, db, m.Table, m.Column)
		if err != nil {
			t.Fatalf("columnExists(%s, %s): %v", m.Table, m.Column, err)
		}
		if !ok {
			t.Errorf("expected column %s.%s to exist", m.Table, m.Column)
		}
	}
}

func TestUpgradeDB_AlreadyUpToDate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := UpgradeDB(ctx, db, "test", TargetSchemaVersion, zerolog.Nop()); err != nil {
			t.Fatalf("UpgradeDB run %d failed: %v", i+1, err)
		}
	}

	version, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("expected version %d, got %d", TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_NewerVersionUnsupported(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := UpgradeDB(ctx, db, "test", TargetSchemaVersion, zerolog.Nop()); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}
	if err := setComponentSchemaVersion(ctx, db, JournalDBComponent, TargetSchemaVersion+1); err != nil {
		t.Fatalf("setComponentSchemaVersion failed: %v", err)
	}

	err := UpgradeDB(ctx, db, "test", TargetSchemaVersion, zerolog.Nop())
	if err == nil {
		t.Fatal("expected UpgradeDB to refuse a newer schema version")
	}
}

func TestUpgradeDB_MigratesLegacySchema(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	// A version 1 layout: no category columns.
	legacy := []string{
		`CREATE TABLE daybook_versions (component TEXT PRIMARY KEY, version INTEGER NOT NULL, created_at REAL DEFAULT (unixepoch()))`,
		`CREATE TABLE moods (id INTEGER PRIMARY KEY, name VARCHAR(64) NOT NULL, category VARCHAR(32) NOT NULL, UNIQUE (name, category))`,
		`CREATE TABLE journal_entries (id INTEGER PRIMARY KEY AUTOINCREMENT, entry_date TEXT NOT NULL UNIQUE, title VARCHAR(256) NOT NULL DEFAULT '', content TEXT NOT NULL DEFAULT '', primary_mood_id INTEGER NOT NULL REFERENCES moods(id), secondary_mood1_id INTEGER REFERENCES moods(id), secondary_mood2_id INTEGER REFERENCES moods(id), created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP NOT NULL)`,
		`CREATE TABLE tags (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(256) NOT NULL UNIQUE COLLATE NOCASE, is_prebuilt BOOLEAN NOT NULL DEFAULT FALSE)`,
		`INSERT INTO daybook_versions (component, version) VALUES ('journaldb', 1)`,
		`INSERT INTO moods (id, name, category) VALUES (11, 'Sad', 'Negative')`,
		`INSERT INTO tags (name) VALUES ('Yoga'), ('Knitting')`,
		`INSERT INTO journal_entries (entry_date, primary_mood_id, created_at, updated_at) VALUES ('2024-01-05', 11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	}
	for _, stmt := range legacy {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("legacy setup %q: %v", stmt, err)
		}
	}

	if err := UpgradeDB(ctx, db, "legacy", TargetSchemaVersion, zerolog.Nop()); err != nil {
		t.Fatalf("UpgradeDB on legacy schema failed: %v", err)
	}
	if _, err := seedMoods(ctx, db); err != nil {
		t.Fatalf("seedMoods failed: %v", err)
	}
	if _, err := backfillTagCategories(ctx, db); err != nil {
		t.Fatalf("backfillTagCategories failed: %v", err)
	}
	if _, err := backfillEntryCategories(ctx, db); err != nil {
		t.Fatalf("backfillEntryCategories failed: %v", err)
	}

	cases := map[string]string{"Yoga": "Health", "Knitting": "Custom"}
	for name, want := range cases {
		var got string
		if err := db.Get(&got, `SELECT category FROM tags WHERE name = ?`, name); err != nil {
			t.Fatalf("reading category of %s: %v", name, err)
		}
		if got != want {
			t.Errorf("tag %s: expected category %q, got %q", name, want, got)
		}
	}

	var entryCategory string
	if err := db.Get(&entryCategory, `SELECT category FROM journal_entries WHERE entry_date = '2024-01-05'`); err != nil {
		t.Fatalf("reading entry category: %v", err)
	}
	if entryCategory != "Negative" {
		t.Errorf("expected entry category Negative, got %q", entryCategory)
	}

	version, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("expected version %d after migration, got %d", TargetSchemaVersion, version)
	}
}

func TestOpenDBConnection_InvalidSync(t *testing.T) {
	_, err := OpenDBConnection(filepath.Join(t.TempDir(), "x.db"), false, "SOMETIMES")
	if err == nil {
		t.Fatal("expected an error for an invalid sync pragma")
	}
}

func TestGetComponentSchemaVersion_NoTable(t *testing.T) {
	db := openTestDB(t)
	version, err := GetComponentSchemaVersion(context.Background(), db, fmt.Sprintf("%s-missing", JournalDBComponent))
	if err != nil {
		t.Fatalf("expected no error for a missing versions table, got %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}
