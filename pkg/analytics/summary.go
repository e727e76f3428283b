// Package analytics computes mood, tag, word-count and streak statistics over
// a range of days.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

// NoMood is reported as the most frequent mood of a range without entries.
const NoMood = "-"

const (
	moodCountsStatement = `
	SELECT m.id AS mood_id, m.name AS name, m.category AS category, COUNT(*) AS count
	FROM (
		SELECT primary_mood_id AS mood_id, entry_date FROM journal_entries
		UNION ALL
		SELECT secondary_mood1_id, entry_date FROM journal_entries WHERE secondary_mood1_id IS NOT NULL
		UNION ALL
		SELECT secondary_mood2_id, entry_date FROM journal_entries WHERE secondary_mood2_id IS NOT NULL
	) AS picks
	JOIN moods m ON m.id = picks.mood_id
	WHERE picks.entry_date >= ? AND picks.entry_date <= ?
	GROUP BY m.id, m.name, m.category
	ORDER BY COUNT(*) DESC, m.name ASC
	`

	tagCountsStatement = `
	SELECT t.id AS tag_id, t.name AS name, t.category AS category, COUNT(DISTINCT je.id) AS count
	FROM entry_tags et
	JOIN tags t ON t.id = et.tag_id
	JOIN journal_entries je ON je.id = et.entry_id
	WHERE je.entry_date >= ? AND je.entry_date <= ?
	GROUP BY t.id, t.name, t.category
	ORDER BY COUNT(DISTINCT je.id) DESC, t.name COLLATE NOCASE ASC
	`

	tagCategoryCountsStatement = `
	SELECT CASE WHEN t.category = '' THEN 'Custom' ELSE t.category END AS category, COUNT(DISTINCT je.id) AS count
	FROM entry_tags et
	JOIN tags t ON t.id = et.tag_id
	JOIN journal_entries je ON je.id = et.entry_id
	WHERE je.entry_date >= ? AND je.entry_date <= ?
	GROUP BY 1
	ORDER BY COUNT(DISTINCT je.id) DESC, 1 ASC
	`

	entryTotalStatement = `
	SELECT COUNT(*) FROM journal_entries
	WHERE entry_date >= ? AND entry_date <= ?
	`

	entryContentStatement = `
	SELECT entry_date, content FROM journal_entries
	WHERE entry_date >= ? AND entry_date <= ?
	ORDER BY entry_date ASC
	`
)

type MoodCount struct {
	Mood     vocab.Mood         `db:"mood_id" json:"mood_id"`
	Name     string             `db:"name" json:"name"`
	Category vocab.MoodCategory `db:"category" json:"category"`
	Count    int                `db:"count" json:"count"`
}

type CategoryCount struct {
	Category   string  `db:"category" json:"category"`
	Count      int     `db:"count" json:"count"`
	Percentage float64 `db:"-" json:"percentage"`
}

type TagCount struct {
	TagID      int64   `db:"tag_id" json:"tag_id"`
	Name       string  `db:"name" json:"name"`
	Category   string  `db:"category" json:"category"`
	Count      int     `db:"count" json:"count"`
	Percentage float64 `db:"-" json:"percentage"`
}

type WordCountPoint struct {
	Day          dates.Day `json:"day"`
	AverageWords float64   `json:"average_words"`
}

type Summary struct {
	Start            dates.Day        `json:"start"`
	End              dates.Day        `json:"end"`
	TotalEntries     int              `json:"total_entries"`
	MoodCounts       []MoodCount      `json:"mood_counts"`
	MostFrequentMood string           `json:"most_frequent_mood"`
	MoodCategories   []CategoryCount  `json:"mood_categories"`
	TagCounts        []TagCount       `json:"tag_counts"`
	TagCategories    []CategoryCount  `json:"tag_categories"`
	WordCountTrend   []WordCountPoint `json:"word_count_trend"`
}

// Engine runs analytics queries against a Store.
type Engine struct {
	store   *db.Store
	entries *entries.Repository
	log     zerolog.Logger
}

func NewEngine(store *db.Store, repo *entries.Repository) *Engine {
	return &Engine{
		store:   store,
		entries: repo,
		log:     store.Logger().With().Str("component", "analytics").Logger(),
	}
}

// Percentage returns count/total as a percentage rounded to one decimal, or
// 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// normalizeRange returns the days of start and end, earliest first.
func normalizeRange(start, end time.Time) (dates.Day, dates.Day) {
	s, e := dates.DayOf(start), dates.DayOf(end)
	if e.Before(s.Time) {
		s, e = e, s
	}
	return s, e
}

// Summary aggregates the entries whose day lies in [start, end]. The bounds
// are swapped when start is after end.
func (en *Engine) Summary(ctx context.Context, start, end time.Time) (Summary, error) {
	s, e := normalizeRange(start, end)
	out := Summary{Start: s, End: e, MostFrequentMood: NoMood}

	if err := en.store.Get(ctx, &out.TotalEntries, entryTotalStatement, s, e); err != nil {
		return Summary{}, fmt.Errorf("failed to count entries in range: %w", err)
	}

	out.MoodCounts = []MoodCount{}
	if err := en.store.Select(ctx, &out.MoodCounts, moodCountsStatement, s, e); err != nil {
		return Summary{}, fmt.Errorf("failed to count moods: %w", err)
	}
	if len(out.MoodCounts) > 0 {
		out.MostFrequentMood = out.MoodCounts[0].Name
	}
	out.MoodCategories = moodCategoryCounts(out.MoodCounts, out.TotalEntries)

	out.TagCounts = []TagCount{}
	if err := en.store.Select(ctx, &out.TagCounts, tagCountsStatement, s, e); err != nil {
		return Summary{}, fmt.Errorf("failed to count tags: %w", err)
	}
	for i := range out.TagCounts {
		out.TagCounts[i].Percentage = Percentage(out.TagCounts[i].Count, out.TotalEntries)
	}

	out.TagCategories = []CategoryCount{}
	if err := en.store.Select(ctx, &out.TagCategories, tagCategoryCountsStatement, s, e); err != nil {
		return Summary{}, fmt.Errorf("failed to count tag categories: %w", err)
	}
	for i := range out.TagCategories {
		out.TagCategories[i].Percentage = Percentage(out.TagCategories[i].Count, out.TotalEntries)
	}

	trend, err := en.wordCountTrend(ctx, s, e)
	if err != nil {
		return Summary{}, err
	}
	out.WordCountTrend = trend

	en.log.Debug().
		Str("start", s.Key()).
		Str("end", e.Key()).
		Int("entries", out.TotalEntries).
		Msg("summary computed")
	return out, nil
}

// moodCategoryCounts regroups mood picks by category in display order,
// keeping categories with no picks at zero.
func moodCategoryCounts(moods []MoodCount, total int) []CategoryCount {
	sums := make(map[vocab.MoodCategory]int, 3)
	for _, m := range moods {
		sums[m.Category] += m.Count
	}
	out := make([]CategoryCount, 0, 3)
	for _, cat := range vocab.MoodCategories() {
		out = append(out, CategoryCount{
			Category:   string(cat),
			Count:      sums[cat],
			Percentage: Percentage(sums[cat], total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func (en *Engine) wordCountTrend(ctx context.Context, s, e dates.Day) ([]WordCountPoint, error) {
	var rows []struct {
		Day     dates.Day `db:"entry_date"`
		Content string    `db:"content"`
	}
	if err := en.store.Select(ctx, &rows, entryContentStatement, s, e); err != nil {
		return nil, fmt.Errorf("failed to read entry content: %w", err)
	}

	type acc struct {
		day   dates.Day
		words int
		n     int
	}
	var order []string
	byDay := map[string]*acc{}
	for _, r := range rows {
		k := r.Day.Key()
		a, ok := byDay[k]
		if !ok {
			a = &acc{day: r.Day}
			byDay[k] = a
			order = append(order, k)
		}
		a.words += CountWords(r.Content)
		a.n++
	}

	out := make([]WordCountPoint, 0, len(order))
	for _, k := range order {
		a := byDay[k]
		out = append(out, WordCountPoint{Day: a.day, AverageWords: float64(a.words) / float64(a.n)})
	}
	return out, nil
}
