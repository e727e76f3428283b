package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

func setup(t *testing.T) (*Catalog, *entries.Repository, *db.Store) {
	t.Helper()
	store := db.NewStore(db.Options{Path: filepath.Join(t.TempDir(), "journal.db"), WAL: true, Sync: "NORMAL"}, zerolog.Nop())
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { store.Close() })
	return New(store), entries.NewRepository(store), store
}

func countTags(t *testing.T, c *Catalog) int {
	t.Helper()
	tags, err := c.ListTags(context.Background())
	require.NoError(t, err)
	return len(tags)
}

func newEntry(t *testing.T, r *entries.Repository, d int) entries.Entry {
	t.Helper()
	e, err := r.UpsertForDay(context.Background(), entries.Entry{
		EntryDate:   dates.DayOf(time.Date(2024, 9, d, 12, 0, 0, 0, time.Local)),
		PrimaryMood: vocab.Calm,
	})
	require.NoError(t, err)
	return e
}

func TestAddTagIsCaseInsensitive(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()
	before := countTags(t, c)

	first, err := c.AddTag(ctx, "Gardening", false, "")
	require.NoError(t, err)
	second, err := c.AddTag(ctx, "  GARDENING ", true, "Lifestyle")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Gardening", second.Name)
	assert.False(t, second.IsPrebuilt)
	assert.Equal(t, vocab.TagCategoryCustom, second.Category)
	assert.Equal(t, before+1, countTags(t, c))
}

func TestAddTagExistingPrebuiltUntouched(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	work, err := c.AddTag(ctx, "WORK", false, "Custom")
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)
	assert.True(t, work.IsPrebuilt)
	assert.Equal(t, vocab.TagCategoryWorkStudy, work.Category)
}

func TestAddTagCategories(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	derived, err := c.AddTag(ctx, "meditation retreat", false, "")
	require.NoError(t, err)
	assert.Equal(t, vocab.TagCategoryCustom, derived.Category)

	custom, err := c.AddCustomTag(ctx, "Board games")
	require.NoError(t, err)
	assert.Equal(t, vocab.TagCategoryCustom, custom.Category)
	assert.False(t, custom.IsPrebuilt)

	explicit, err := c.AddTag(ctx, "Running", false, vocab.TagCategoryHealth)
	require.NoError(t, err)
	assert.Equal(t, vocab.TagCategoryHealth, explicit.Category)
}

func TestAddTagRejectsEmpty(t *testing.T) {
	c, _, _ := setup(t)
	before := countTags(t, c)

	_, err := c.AddTag(context.Background(), "   ", false, "")
	assert.ErrorIs(t, err, db.ErrInvalidArgument)
	assert.Equal(t, before, countTags(t, c))
}

func TestSetTagsForEntryReplaces(t *testing.T) {
	c, r, _ := setup(t)
	ctx := context.Background()
	e := newEntry(t, r, 1)

	a, err := c.AddTag(ctx, "Alpha", false, "")
	require.NoError(t, err)
	b, err := c.AddTag(ctx, "Beta", false, "")
	require.NoError(t, err)
	cc, err := c.AddTag(ctx, "Gamma", false, "")
	require.NoError(t, err)

	require.NoError(t, c.SetTagsForEntry(ctx, e.ID, []int64{b.ID, a.ID, a.ID}))
	tags, err := c.GetTagsForEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Alpha", tags[0].Name)
	assert.Equal(t, "Beta", tags[1].Name)

	require.NoError(t, c.SetTagsForEntry(ctx, e.ID, []int64{cc.ID}))
	tags, err = c.GetTagsForEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, cc.ID, tags[0].ID)

	require.NoError(t, c.SetTagsForEntry(ctx, e.ID, nil))
	tags, err = c.GetTagsForEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSetTagsForEntryRollsBack(t *testing.T) {
	c, r, _ := setup(t)
	ctx := context.Background()
	e := newEntry(t, r, 2)

	a, err := c.AddTag(ctx, "Alpha", false, "")
	require.NoError(t, err)
	require.NoError(t, c.SetTagsForEntry(ctx, e.ID, []int64{a.ID}))

	// An unknown tag id violates the foreign key; the old set must survive.
	err = c.SetTagsForEntry(ctx, e.ID, []int64{a.ID, 424242})
	require.Error(t, err)

	tags, err := c.GetTagsForEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, a.ID, tags[0].ID)
}

func TestTagIDsByEntryAndListByIDs(t *testing.T) {
	c, r, _ := setup(t)
	ctx := context.Background()
	e1, e2, e3 := newEntry(t, r, 3), newEntry(t, r, 4), newEntry(t, r, 5)

	family, err := c.GetTagByName(ctx, "family")
	require.NoError(t, err)
	travel, err := c.GetTagByName(ctx, "Travel")
	require.NoError(t, err)

	require.NoError(t, c.SetTagsForEntry(ctx, e1.ID, []int64{family.ID, travel.ID}))
	require.NoError(t, c.SetTagsForEntry(ctx, e2.ID, []int64{travel.ID}))

	byEntry, err := c.TagIDsByEntry(ctx, []int64{e1.ID, e2.ID, e3.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{family.ID, travel.ID}, byEntry[e1.ID])
	assert.Equal(t, []int64{travel.ID}, byEntry[e2.ID])
	_, ok := byEntry[e3.ID]
	assert.False(t, ok)

	tags, err := c.ListTagsByIDs(ctx, []int64{travel.ID, family.ID})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Family", tags[0].Name)

	_, err = c.GetTagByName(ctx, "nope")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestMoods(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	rows, err := c.ListMoods(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 15)
	assert.Equal(t, vocab.Happy, rows[0].ID)
	assert.Equal(t, "Anxious", rows[14].Name)

	neutral, err := c.MoodsInCategory(ctx, vocab.CategoryNeutral)
	require.NoError(t, err)
	require.Len(t, neutral, 5)
	assert.Equal(t, "Calm", neutral[0].Name)

	groups := MoodsByCategory()
	require.Len(t, groups, 3)
	assert.Equal(t, vocab.CategoryPositive, groups[0].Category)
	assert.Equal(t, []vocab.Mood{vocab.Sad, vocab.Angry, vocab.Stressed, vocab.Lonely, vocab.Anxious}, groups[2].Moods)
}
