// Package entries persists diary entries, one per calendar day.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
)

const entryColumns = `id, entry_date, title, content, primary_mood_id, secondary_mood1_id, secondary_mood2_id, category, created_at, updated_at`

const (
	getEntryByDateStatement = `
	SELECT ` + entryColumns + `
	FROM journal_entries
	WHERE entry_date = ?
	`

	getEntryByIDStatement = `
	SELECT ` + entryColumns + `
	FROM journal_entries
	WHERE id = ?
	`

	insertEntryStatement = `
	INSERT INTO journal_entries (entry_date, title, content, primary_mood_id, secondary_mood1_id, secondary_mood2_id, category, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	updateEntryStatement = `
	UPDATE journal_entries
	SET title = ?, content = ?, primary_mood_id = ?, secondary_mood1_id = ?, secondary_mood2_id = ?, category = ?, updated_at = ?
	WHERE id = ?
	`

	deleteEntryByDateStatement = `
	DELETE FROM journal_entries
	WHERE entry_date = ?
	`

	listEntriesPagedStatement = `
	SELECT ` + entryColumns + `
	FROM journal_entries
	ORDER BY entry_date DESC
	LIMIT ? OFFSET ?
	`

	listEntriesInRangeStatement = `
	SELECT ` + entryColumns + `
	FROM journal_entries
	WHERE entry_date >= ? AND entry_date <= ?
	ORDER BY entry_date DESC
	`

	listEntryDatesInRangeStatement = `
	SELECT entry_date FROM journal_entries
	WHERE entry_date >= ? AND entry_date <= ?
	`

	listAllEntryDatesStatement = `
	SELECT entry_date FROM journal_entries
	`

	countEntriesStatement = `
	SELECT COUNT(*) FROM journal_entries
	`
)

// Repository reads and writes journal_entries through a Store.
type Repository struct {
	store *db.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{
		store: store,
		log:   store.Logger().With().Str("component", "entries").Logger(),
		now:   time.Now,
	}
}

func validate(e Entry) error {
	if e.EntryDate.Time.IsZero() {
		return fmt.Errorf("%w: entry date is required", db.ErrInvalidArgument)
	}
	if !e.PrimaryMood.Valid() {
		return fmt.Errorf("%w: primary mood %d is not a known mood", db.ErrInvalidArgument, int(e.PrimaryMood))
	}
	for _, m := range []*vocab.Mood{e.SecondaryMood1, e.SecondaryMood2} {
		if m != nil && !m.Valid() {
			return fmt.Errorf("%w: secondary mood %d is not a known mood", db.ErrInvalidArgument, int(*m))
		}
	}
	return nil
}

// UpsertForDay stores e as the entry of its calendar day. When the day already
// has an entry, its id and CreatedAt are kept and every other field is
// overwritten. Entries without a category take the primary mood's category.
func (r *Repository) UpsertForDay(ctx context.Context, e Entry) (Entry, error) {
	if err := validate(e); err != nil {
		return Entry{}, err
	}

	day := dates.DayOf(e.EntryDate.Time)
	if e.Category == "" {
		e.Category = string(e.PrimaryMood.Category())
	}
	now := r.now().UTC()

	var id int64
	err := r.store.InTx(ctx, func(tx *sqlx.Tx) error {
		var existing int64
		err := tx.GetContext(ctx, &existing, `SELECT id FROM journal_entries WHERE entry_date = ?`, day)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx, insertEntryStatement,
				day, e.Title, e.Content, e.PrimaryMood, e.SecondaryMood1, e.SecondaryMood2, e.Category, now, now)
			if err != nil {
				return fmt.Errorf("failed to insert entry for %s: %w", day, err)
			}
			id, err = res.LastInsertId()
			return err
		case err != nil:
			return fmt.Errorf("failed to look up entry for %s: %w", day, err)
		}

		if _, err := tx.ExecContext(ctx, updateEntryStatement,
			e.Title, e.Content, e.PrimaryMood, e.SecondaryMood1, e.SecondaryMood2, e.Category, now, existing); err != nil {
			return fmt.Errorf("failed to update entry for %s: %w", day, err)
		}
		id = existing
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	r.log.Debug().Int64("id", id).Str("day", day.Key()).Msg("entry upserted")
	return r.GetByID(ctx, id)
}

// GetByDate returns the entry of the calendar day containing date.
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (Entry, error) {
	var e Entry
	if err := r.store.Get(ctx, &e, getEntryByDateStatement, dates.DayOf(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Entry, error) {
	var e Entry
	if err := r.store.Get(ctx, &e, getEntryByIDStatement, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

// DeleteByDate removes the entry of the day containing date and reports
// whether one existed. Its tag associations cascade.
func (r *Repository) DeleteByDate(ctx context.Context, date time.Time) (bool, error) {
	day := dates.DayOf(date)
	res, err := r.store.Exec(ctx, deleteEntryByDateStatement, day)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry for %s: %w", day, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		r.log.Debug().Str("day", day.Key()).Msg("entry deleted")
	}
	return n > 0, nil
}

// GetPaged returns a 1-indexed page of entries, newest first. Page and size
// below 1 are treated as 1.
func (r *Repository) GetPaged(ctx context.Context, page, size int) ([]Entry, error) {
	page, size = clampPage(page, size)
	out := []Entry{}
	if err := r.store.Select(ctx, &out, listEntriesPagedStatement, size, (page-1)*size); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return out, nil
}

// GetEntriesInRange returns entries whose day lies in [start, end], newest first.
func (r *Repository) GetEntriesInRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	out := []Entry{}
	if err := r.store.Select(ctx, &out, listEntriesInRangeStatement, dates.DayOf(start), dates.DayOf(end)); err != nil {
		return nil, fmt.Errorf("failed to list entries in range: %w", err)
	}
	return out, nil
}

func (r *Repository) GetEntryDatesInRange(ctx context.Context, start, end time.Time) (dates.Set, error) {
	return r.selectDates(ctx, listEntryDatesInRangeStatement, dates.DayOf(start), dates.DayOf(end))
}

func (r *Repository) GetAllEntryDates(ctx context.Context) (dates.Set, error) {
	return r.selectDates(ctx, listAllEntryDatesStatement)
}

func (r *Repository) selectDates(ctx context.Context, query string, args ...any) (dates.Set, error) {
	var days []dates.Day
	if err := r.store.Select(ctx, &days, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}
	set := dates.NewSet()
	for _, d := range days {
		set.Add(d.Time)
	}
	return set, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.store.Get(ctx, &n, countEntriesStatement); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
