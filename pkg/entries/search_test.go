package entries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

func tagID(t *testing.T, store *db.Store, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, store.Get(context.Background(), &id, `SELECT id FROM tags WHERE name = ?`, name))
	return id
}

func link(t *testing.T, store *db.Store, entryID int64, tagIDs ...int64) {
	t.Helper()
	for _, id := range tagIDs {
		_, err := store.Exec(context.Background(), `INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?)`, entryID, id)
		require.NoError(t, err)
	}
}

func ids(es []Entry) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestSearchTagsAreConjunctive(t *testing.T) {
	r, store := setupRepo(t)
	ctx := context.Background()

	work, family := tagID(t, store, "Work"), tagID(t, store, "Family")

	e1 := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 1, 1)), PrimaryMood: vocab.Happy})
	e2 := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 1, 2)), PrimaryMood: vocab.Happy})
	link(t, store, e1.ID, work, family)
	link(t, store, e2.ID, work)

	got, err := r.Search(ctx, SearchParams{TagIDs: []int64{work, family}, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{e1.ID}, ids(got))

	// Duplicates in the request do not raise the required count.
	got, err = r.Search(ctx, SearchParams{TagIDs: []int64{work, work}, PageSize: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{e1.ID, e2.ID}, ids(got))

	n, err := r.SearchCount(ctx, SearchParams{TagIDs: []int64{work, family}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearchMoodsAreDisjunctiveAcrossSlots(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	e3 := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 2, 1)), PrimaryMood: vocab.Nostalgic})
	e4 := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 2, 2)), PrimaryMood: vocab.Calm, SecondaryMood2: mood(vocab.Nostalgic)})
	e5 := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 2, 3)), PrimaryMood: vocab.Angry, SecondaryMood1: mood(vocab.Lonely)})
	mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 2, 4)), PrimaryMood: vocab.Bored})

	got, err := r.Search(ctx, SearchParams{MoodIDs: []vocab.Mood{vocab.Nostalgic}, PageSize: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{e3.ID, e4.ID}, ids(got))

	got, err = r.Search(ctx, SearchParams{MoodIDs: []vocab.Mood{vocab.Nostalgic, vocab.Lonely}, PageSize: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{e3.ID, e4.ID, e5.ID}, ids(got))
}

func TestSearchTextAndDates(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	a := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 3, 1)), Title: "Beach Day", Content: "<p>sun</p>", PrimaryMood: vocab.Happy})
	b := mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 3, 2)), Title: "Office", Content: "<p>long BEACH meeting</p>", PrimaryMood: vocab.Stressed})
	mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 3, 3)), Title: "100% done", Content: "under_score", PrimaryMood: vocab.Confident})

	got, err := r.Search(ctx, SearchParams{Query: "beach", PageSize: 10, Sort: SortDateAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids(got))

	start := time.Date(2024, 3, 2, 15, 0, 0, 0, time.Local)
	got, err = r.Search(ctx, SearchParams{Query: "beach", Start: &start, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(got))

	end := day(2024, 3, 1)
	got, err = r.Search(ctx, SearchParams{End: &end, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids(got))

	// Wildcards in the query match literally.
	n, err := r.SearchCount(ctx, SearchParams{Query: "0%"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = r.SearchCount(ctx, SearchParams{Query: "h_d"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSearchSortAndPaging(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	titles := []string{"banana", "Apple", "cherry"}
	for i, title := range titles {
		mustUpsert(t, r, Entry{EntryDate: dates.DayOf(day(2024, 8, i+1)), Title: title, PrimaryMood: vocab.Relaxed})
	}

	titlesOf := func(es []Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Title)
		}
		return out
	}

	got, err := r.Search(ctx, SearchParams{PageSize: 10, Sort: SortTitleAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titlesOf(got))

	got, err = r.Search(ctx, SearchParams{PageSize: 10, Sort: SortTitleDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titlesOf(got))

	got, err = r.Search(ctx, SearchParams{PageSize: 10, Sort: ParseSortOption("nonsense")})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "Apple", "banana"}, titlesOf(got))

	got, err = r.Search(ctx, SearchParams{Page: 2, PageSize: 2, Sort: SortDateAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry"}, titlesOf(got))

	n, err := r.SearchCount(ctx, SearchParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortDateAsc, ParseSortOption("DATE_ASC"))
	assert.Equal(t, SortTitleAsc, ParseSortOption(" title_asc "))
	assert.Equal(t, SortDateDesc, ParseSortOption(""))
}
