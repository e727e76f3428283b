package entries

import (
	"context"
	"fmt"
	"strings"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders the filters of p as a WHERE clause whose slice
// arguments still need sqlx.In expansion.
func (p SearchParams) whereClause() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if q := strings.TrimSpace(p.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		clauses = append(clauses, `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if p.Start != nil {
		clauses = append(clauses, "entry_date >= ?")
		args = append(args, dates.DayOf(*p.Start))
	}
	if p.End != nil {
		clauses = append(clauses, "entry_date <= ?")
		args = append(args, dates.DayOf(*p.End))
	}

	if moods := distinctMoods(p.MoodIDs); len(moods) > 0 {
		clauses = append(clauses, "(primary_mood_id IN (?) OR secondary_mood1_id IN (?) OR secondary_mood2_id IN (?))")
		args = append(args, moods, moods, moods)
	}

	if tags := distinctIDs(p.TagIDs); len(tags) > 0 {
		clauses = append(clauses, `id IN (
		SELECT entry_id FROM entry_tags
		WHERE tag_id IN (?)
		GROUP BY entry_id
		HAVING COUNT(DISTINCT tag_id) = ?)`)
		args = append(args, tags, len(tags))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Search returns one page of entries matching every filter of p.
func (r *Repository) Search(ctx context.Context, p SearchParams) ([]Entry, error) {
	page, size := clampPage(p.Page, p.PageSize)
	where, args := p.whereClause()

	query := "SELECT " + entryColumns + " FROM journal_entries" + where +
		" ORDER BY " + p.Sort.orderBy() + " LIMIT ? OFFSET ?"
	args = append(args, size, (page-1)*size)

	query, args, err := r.store.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	out := []Entry{}
	if err := r.store.Select(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return out, nil
}

// SearchCount counts all entries matching p, ignoring paging.
func (r *Repository) SearchCount(ctx context.Context, p SearchParams) (int, error) {
	where, args := p.whereClause()

	query, args, err := r.store.In("SELECT COUNT(*) FROM journal_entries"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to build search count query: %w", err)
	}

	var n int
	if err := r.store.Get(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count search results: %w", err)
	}
	return n, nil
}

func distinctMoods(in []vocab.Mood) []int64 {
	seen := make(map[vocab.Mood]bool, len(in))
	var out []int64
	for _, m := range in {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, int64(m))
	}
	return out
}

func distinctIDs(in []int64) []int64 {
	seen := make(map[int64]bool, len(in))
	var out []int64
	for _, id := range in {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
