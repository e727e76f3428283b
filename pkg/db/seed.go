package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unowned-ai/daybook/pkg/vocab"
)

// seedMoods inserts every mood of the vocabulary that is missing, keyed by
// (name, category). A mood's id is its code.
func seedMoods(ctx context.Context, db *sqlx.DB) (int, error) {
	inserted := 0
	for _, m := range vocab.AllMoods() {
		var id int64
		err := db.GetContext(ctx, &id, `SELECT id FROM moods WHERE name = ? AND category = ?`, m.Name(), string(m.Category()))
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return inserted, fmt.Errorf("failed to look up mood %s: %w", m.Name(), err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO moods (id, name, category) VALUES (?, ?, ?)`,
			int(m), m.Name(), string(m.Category())); err != nil {
			return inserted, fmt.Errorf("failed to seed mood %s: %w", m.Name(), err)
		}
		inserted++
	}
	return inserted, nil
}

// seedTags inserts the prebuilt tags that are missing, keyed by name.
func seedTags(ctx context.Context, db *sqlx.DB) (int, error) {
	inserted := 0
	for _, name := range vocab.PrebuiltTags() {
		var id int64
		err := db.GetContext(ctx, &id, `SELECT id FROM tags WHERE name = ?`, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return inserted, fmt.Errorf("failed to look up tag %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO tags (name, is_prebuilt, category) VALUES (?, TRUE, ?)`,
			name, vocab.MapTagCategory(name)); err != nil {
			return inserted, fmt.Errorf("failed to seed tag %s: %w", name, err)
		}
		inserted++
	}
	return inserted, nil
}

// backfillTagCategories fills empty tag categories from the name mapping.
func backfillTagCategories(ctx context.Context, db *sqlx.DB) (int, error) {
	var rows []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT id, name FROM tags WHERE category = ''`); err != nil {
		return 0, fmt.Errorf("failed to list uncategorized tags: %w", err)
	}
	for _, r := range rows {
		if _, err := db.ExecContext(ctx, `UPDATE tags SET category = ? WHERE id = ?`, vocab.MapTagCategory(r.Name), r.ID); err != nil {
			return 0, fmt.Errorf("failed to backfill category of tag %s: %w", r.Name, err)
		}
	}
	return len(rows), nil
}

// backfillEntryCategories gives uncategorized entries their primary mood's category.
func backfillEntryCategories(ctx context.Context, db *sqlx.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE journal_entries
SET category = COALESCE((SELECT m.category FROM moods m WHERE m.id = journal_entries.primary_mood_id), '')
WHERE category = ''`)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill entry categories: %w", err)
	}
	return res.RowsAffected()
}
