package catalog

import (
	"context"
	"fmt"

	"github.com/unowned-ai/daybook/pkg/vocab"
)

const (
	listMoodsStatement = `
	SELECT id, name, category FROM moods
	ORDER BY id
	`

	listMoodsInCategoryStatement = `
	SELECT id, name, category FROM moods
	WHERE category = ?
	ORDER BY id
	`
)

// MoodRow is a persisted mood.
type MoodRow struct {
	ID       vocab.Mood         `db:"id" json:"id"`
	Name     string             `db:"name" json:"name"`
	Category vocab.MoodCategory `db:"category" json:"category"`
}

// MoodGroup is one category of the mood picker.
type MoodGroup struct {
	Category vocab.MoodCategory `json:"category"`
	Moods    []vocab.Mood       `json:"moods"`
}

// ListMoods returns the persisted moods in seed order.
func (c *Catalog) ListMoods(ctx context.Context) ([]MoodRow, error) {
	moods := []MoodRow{}
	if err := c.store.Select(ctx, &moods, listMoodsStatement); err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	return moods, nil
}

func (c *Catalog) MoodsInCategory(ctx context.Context, category vocab.MoodCategory) ([]MoodRow, error) {
	moods := []MoodRow{}
	if err := c.store.Select(ctx, &moods, listMoodsInCategoryStatement, string(category)); err != nil {
		return nil, fmt.Errorf("failed to list %s moods: %w", category, err)
	}
	return moods, nil
}

// MoodsByCategory groups the mood catalog as Positive, Neutral, Negative,
// each in seed order.
func MoodsByCategory() []MoodGroup {
	groups := make([]MoodGroup, 0, 3)
	for _, cat := range vocab.MoodCategories() {
		g := MoodGroup{Category: cat}
		for _, m := range vocab.AllMoods() {
			if m.Category() == cat {
				g.Moods = append(g.Moods, m)
			}
		}
		groups = append(groups, g)
	}
	return groups
}
