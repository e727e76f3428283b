// Package catalog manages tags, entry-tag associations and the mood listing.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

var (
	ErrTagNotFound = errors.New("tag not found")
)

const (
	getTagByNameStatement = `
	SELECT id, name, is_prebuilt, category FROM tags
	WHERE name = ?
	`

	insertTagStatement = `
	INSERT INTO tags (name, is_prebuilt, category) VALUES (?, ?, ?)
	ON CONFLICT(name) DO NOTHING
	`

	listTagsStatement = `
	SELECT id, name, is_prebuilt, category FROM tags
	ORDER BY name COLLATE NOCASE ASC
	`

	listTagsByIDsStatement = `
	SELECT id, name, is_prebuilt, category FROM tags
	WHERE id IN (?)
	ORDER BY name COLLATE NOCASE ASC
	`

	deleteEntryTagsStatement = `
	DELETE FROM entry_tags WHERE entry_id = ?
	`

	insertEntryTagStatement = `
	INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?)
	`

	listTagsForEntryStatement = `
	SELECT t.id, t.name, t.is_prebuilt, t.category
	FROM tags t
	JOIN entry_tags et ON et.tag_id = t.id
	WHERE et.entry_id = ?
	ORDER BY t.name COLLATE NOCASE ASC
	`

	listEntryTagPairsStatement = `
	SELECT entry_id, tag_id FROM entry_tags
	WHERE entry_id IN (?)
	ORDER BY entry_id, tag_id
	`
)

type Tag struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	IsPrebuilt bool   `db:"is_prebuilt" json:"is_prebuilt"`
	Category   string `db:"category" json:"category"`
}

// Catalog reads and writes tags and moods through a Store.
type Catalog struct {
	store *db.Store
	log   zerolog.Logger
}

func New(store *db.Store) *Catalog {
	return &Catalog{
		store: store,
		log:   store.Logger().With().Str("component", "catalog").Logger(),
	}
}

// MapTagCategory classifies a tag name.
func MapTagCategory(name string) string {
	return vocab.MapTagCategory(name)
}

// AddTag returns the tag named name, creating it if no tag matches
// case-insensitively. An existing tag is returned unchanged. An empty
// category is derived from the name.
func (c *Catalog) AddTag(ctx context.Context, name string, isPrebuilt bool, category string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, fmt.Errorf("%w: tag name must not be empty", db.ErrInvalidArgument)
	}

	existing, err := c.GetTagByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return Tag{}, err
	}

	if strings.TrimSpace(category) == "" {
		category = vocab.MapTagCategory(name)
	}
	if _, err := c.store.Exec(ctx, insertTagStatement, name, isPrebuilt, category); err != nil {
		return Tag{}, fmt.Errorf("failed to insert tag %q: %w", name, err)
	}
	c.log.Debug().Str("tag", name).Str("category", category).Msg("tag added")

	return c.GetTagByName(ctx, name)
}

// AddCustomTag adds a user-typed tag in the Custom category.
func (c *Catalog) AddCustomTag(ctx context.Context, name string) (Tag, error) {
	return c.AddTag(ctx, name, false, vocab.TagCategoryCustom)
}

func (c *Catalog) GetTagByName(ctx context.Context, name string) (Tag, error) {
	var t Tag
	if err := c.store.Get(ctx, &t, getTagByNameStatement, strings.TrimSpace(name)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, ErrTagNotFound
		}
		return Tag{}, err
	}
	return t, nil
}

func (c *Catalog) ListTags(ctx context.Context) ([]Tag, error) {
	tags := []Tag{}
	if err := c.store.Select(ctx, &tags, listTagsStatement); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (c *Catalog) ListTagsByIDs(ctx context.Context, ids []int64) ([]Tag, error) {
	tags := []Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	query, args, err := c.store.In(listTagsByIDsStatement, ids)
	if err != nil {
		return nil, err
	}
	if err := c.store.Select(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tags by id: %w", err)
	}
	return tags, nil
}

// SetTagsForEntry replaces the tag set of an entry with the distinct ids in
// tagIDs. The delete and inserts commit together.
func (c *Catalog) SetTagsForEntry(ctx context.Context, entryID int64, tagIDs []int64) error {
	seen := make(map[int64]bool, len(tagIDs))
	distinct := make([]int64, 0, len(tagIDs))
	for _, id := range tagIDs {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	err := c.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteEntryTagsStatement, entryID); err != nil {
			return fmt.Errorf("failed to clear tags of entry %d: %w", entryID, err)
		}
		for _, id := range distinct {
			if _, err := tx.ExecContext(ctx, insertEntryTagStatement, entryID, id); err != nil {
				return fmt.Errorf("failed to tag entry %d with %d: %w", entryID, id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Debug().Int64("entry_id", entryID).Ints64("tag_ids", distinct).Msg("entry tags set")
	return nil
}

// GetTagsForEntry returns the tags of an entry ordered by name.
func (c *Catalog) GetTagsForEntry(ctx context.Context, entryID int64) ([]Tag, error) {
	tags := []Tag{}
	if err := c.store.Select(ctx, &tags, listTagsForEntryStatement, entryID); err != nil {
		return nil, fmt.Errorf("failed to list tags of entry %d: %w", entryID, err)
	}
	return tags, nil
}

// TagIDsByEntry maps each of entryIDs that has tags to its tag ids.
func (c *Catalog) TagIDsByEntry(ctx context.Context, entryIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}

	query, args, err := c.store.In(listEntryTagPairsStatement, entryIDs)
	if err != nil {
		return nil, err
	}
	var pairs []struct {
		EntryID int64 `db:"entry_id"`
		TagID   int64 `db:"tag_id"`
	}
	if err := c.store.Select(ctx, &pairs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list entry tags: %w", err)
	}
	for _, p := range pairs {
		out[p.EntryID] = append(out[p.EntryID], p.TagID)
	}
	return out, nil
}
