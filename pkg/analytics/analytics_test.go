package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

type fixture struct {
	engine  *Engine
	repo    *entries.Repository
	catalog *catalog.Catalog
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := db.NewStore(db.Options{Path: filepath.Join(t.TempDir(), "journal.db"), WAL: true, Sync: "NORMAL"}, zerolog.Nop())
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { store.Close() })
	repo := entries.NewRepository(store)
	return fixture{engine: NewEngine(store, repo), repo: repo, catalog: catalog.New(store)}
}

func day(d int) time.Time {
	return time.Date(2024, 10, d, 0, 0, 0, 0, time.Local)
}

func mood(m vocab.Mood) *vocab.Mood { return &m }

func (f fixture) add(t *testing.T, e entries.Entry, tags ...string) entries.Entry {
	t.Helper()
	ctx := context.Background()
	saved, err := f.repo.UpsertForDay(ctx, e)
	require.NoError(t, err)
	var ids []int64
	for _, name := range tags {
		tag, err := f.catalog.AddTag(ctx, name, false, "")
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}
	require.NoError(t, f.catalog.SetTagsForEntry(ctx, saved.ID, ids))
	return saved
}

func keys(ds []dates.Day) []string {
	out := []string{}
	for _, d := range ds {
		out = append(out, d.Key())
	}
	return out
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("  \n"))
	assert.Equal(t, 0, CountWords("<p></p>"))
	assert.Equal(t, 3, CountWords("<p>one <b>two</b></p><p>three</p>"))
	assert.Equal(t, 2, CountWords("<p>one</p><p>two</p>"))
	assert.Equal(t, 4, CountWords("plain text\twith\nbreaks"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 100.0, Percentage(4, 4))
}

func TestStreakHelpers(t *testing.T) {
	full := dates.NewSet(day(1), day(2), day(3), day(4), day(5))
	assert.Equal(t, 5, CurrentStreak(full, day(5)))
	assert.Equal(t, 5, LongestStreak(full))
	assert.Empty(t, MissedDates(full, day(1), day(5)))

	gap := dates.NewSet(day(1), day(2), day(4), day(5))
	assert.Equal(t, 2, LongestStreak(gap))
	assert.Equal(t, 2, CurrentStreak(gap, day(5)))
	assert.Equal(t, []string{"2024-10-03"}, keys(MissedDates(gap, day(1), day(5))))

	noEnd := dates.NewSet(day(1), day(2), day(3), day(5))
	assert.Equal(t, 0, CurrentStreak(noEnd, day(4)))
	assert.Equal(t, 3, LongestStreak(noEnd))

	assert.Equal(t, 0, LongestStreak(dates.NewSet()))
	assert.Equal(t, 0, CurrentStreak(dates.NewSet(), day(1)))
}

func TestStreaksAcrossMonthBoundary(t *testing.T) {
	set := dates.NewSet(
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.Local),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
	)
	assert.Equal(t, 3, LongestStreak(set))
	assert.Equal(t, 3, CurrentStreak(set, time.Date(2024, 3, 1, 21, 0, 0, 0, time.Local)))
}

func TestEngineStreaks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, d := range []int{1, 2, 4, 5} {
		f.add(t, entries.Entry{EntryDate: dates.DayOf(day(d)), PrimaryMood: vocab.Happy})
	}

	st, err := f.engine.Streaks(ctx, day(1), day(5))
	require.NoError(t, err)
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, 2, st.Longest)
	assert.Equal(t, []string{"2024-10-03"}, keys(st.MissedDates))

	// Reversed bounds are swapped.
	swapped, err := f.engine.Streaks(ctx, day(5), day(1))
	require.NoError(t, err)
	assert.Equal(t, st, swapped)

	last, err := f.engine.StreaksForLastDays(ctx, 3, time.Date(2024, 10, 6, 9, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, 0, last.Current)
	assert.Equal(t, []string{"2024-10-06"}, keys(last.MissedDates))
}

func TestSummaryEmptyRange(t *testing.T) {
	f := setup(t)

	s, err := f.engine.Summary(context.Background(), day(1), day(31))
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalEntries)
	assert.Equal(t, NoMood, s.MostFrequentMood)
	assert.Empty(t, s.MoodCounts)
	assert.Empty(t, s.TagCounts)
	assert.Empty(t, s.WordCountTrend)
	require.Len(t, s.MoodCategories, 3)
	for _, c := range s.MoodCategories {
		assert.Equal(t, 0.0, c.Percentage)
	}
}

func TestSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.add(t, entries.Entry{EntryDate: dates.DayOf(day(1)), Content: "<p>a b c</p>", PrimaryMood: vocab.Happy, SecondaryMood1: mood(vocab.Calm)}, "Work", "Family")
	f.add(t, entries.Entry{EntryDate: dates.DayOf(day(2)), Content: "<p>a</p>", PrimaryMood: vocab.Happy}, "Work")
	f.add(t, entries.Entry{EntryDate: dates.DayOf(day(3)), Content: "", PrimaryMood: vocab.Sad, SecondaryMood2: mood(vocab.Happy)}, "Projects")
	// Outside the range.
	f.add(t, entries.Entry{EntryDate: dates.DayOf(day(20)), PrimaryMood: vocab.Angry}, "Work")

	s, err := f.engine.Summary(ctx, time.Date(2024, 10, 3, 23, 0, 0, 0, time.Local), day(1))
	require.NoError(t, err)

	assert.Equal(t, "2024-10-01", s.Start.Key())
	assert.Equal(t, "2024-10-03", s.End.Key())
	assert.Equal(t, 3, s.TotalEntries)
	assert.Equal(t, "Happy", s.MostFrequentMood)

	require.Len(t, s.MoodCounts, 3)
	assert.Equal(t, MoodCount{Mood: vocab.Happy, Name: "Happy", Category: vocab.CategoryPositive, Count: 3}, s.MoodCounts[0])
	// ties broken by name
	assert.Equal(t, "Calm", s.MoodCounts[1].Name)
	assert.Equal(t, "Sad", s.MoodCounts[2].Name)

	require.Len(t, s.MoodCategories, 3)
	assert.Equal(t, CategoryCount{Category: "Positive", Count: 3, Percentage: 100}, s.MoodCategories[0])
	assert.Equal(t, CategoryCount{Category: "Neutral", Count: 1, Percentage: 33.3}, s.MoodCategories[1])
	assert.Equal(t, CategoryCount{Category: "Negative", Count: 1, Percentage: 33.3}, s.MoodCategories[2])

	require.Len(t, s.TagCounts, 3)
	assert.Equal(t, "Work", s.TagCounts[0].Name)
	assert.Equal(t, 2, s.TagCounts[0].Count)
	assert.Equal(t, 66.7, s.TagCounts[0].Percentage)

	// Work and Projects share a category; the entry on day 1 counts once.
	require.Len(t, s.TagCategories, 2)
	assert.Equal(t, CategoryCount{Category: vocab.TagCategoryWorkStudy, Count: 3, Percentage: 100}, s.TagCategories[0])
	assert.Equal(t, CategoryCount{Category: vocab.TagCategoryRelationships, Count: 1, Percentage: 33.3}, s.TagCategories[1])

	require.Len(t, s.WordCountTrend, 3)
	assert.Equal(t, "2024-10-01", s.WordCountTrend[0].Day.Key())
	assert.Equal(t, 3.0, s.WordCountTrend[0].AverageWords)
	assert.Equal(t, 1.0, s.WordCountTrend[1].AverageWords)
	assert.Equal(t, 0.0, s.WordCountTrend[2].AverageWords)
}
