// Package export assembles entries of a date range, with their mood and tag
// lookups, into a Bundle that a Renderer turns into a document.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

// Bundle carries everything a document renderer needs.
type Bundle struct {
	ID             uuid.UUID             `json:"id"`
	Start          dates.Day             `json:"start"`
	End            dates.Day             `json:"end"`
	Entries        []entries.Entry       `json:"entries"`
	MoodNames      map[vocab.Mood]string `json:"mood_names"`
	MoodCategories map[vocab.Mood]string `json:"mood_categories"`
	TagNames       map[int64]string      `json:"tag_names"`
	TagsByEntry    map[int64][]int64     `json:"tags_by_entry"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Renderer writes a Bundle as a document.
type Renderer interface {
	Render(w io.Writer, b Bundle) error
	// Extension is the file extension of the output, with the leading dot.
	Extension() string
}

// FileName is the document name used for a PDF export of [start, end].
func FileName(start, end time.Time) string {
	return FileNameWithExtension(start, end, ".pdf")
}

func FileNameWithExtension(start, end time.Time, ext string) string {
	return fmt.Sprintf("Journal_%s_%s%s", dates.Normalize(start).Format("20060102"), dates.Normalize(end).Format("20060102"), ext)
}

type Builder struct {
	entries *entries.Repository
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewBuilder(repo *entries.Repository, cat *catalog.Catalog) *Builder {
	return &Builder{entries: repo, catalog: cat, now: time.Now}
}

// Build collects the entries of [start, end], newest first, with the lookups
// for their moods and tags.
func (b *Builder) Build(ctx context.Context, start, end time.Time) (Bundle, error) {
	s, e := dates.DayOf(start), dates.DayOf(end)
	if e.Before(s.Time) {
		s, e = e, s
	}

	list, err := b.entries.GetEntriesInRange(ctx, s.Time, e.Time)
	if err != nil {
		return Bundle{}, err
	}

	moods, err := b.catalog.ListMoods(ctx)
	if err != nil {
		return Bundle{}, err
	}

	ids := make([]int64, 0, len(list))
	for _, en := range list {
		ids = append(ids, en.ID)
	}
	tagsByEntry, err := b.catalog.TagIDsByEntry(ctx, ids)
	if err != nil {
		return Bundle{}, err
	}

	var tagIDs []int64
	seen := map[int64]bool{}
	for _, tids := range tagsByEntry {
		for _, id := range tids {
			if !seen[id] {
				seen[id] = true
				tagIDs = append(tagIDs, id)
			}
		}
	}
	sort.Slice(tagIDs, func(i, j int) bool { return tagIDs[i] < tagIDs[j] })
	tags, err := b.catalog.ListTagsByIDs(ctx, tagIDs)
	if err != nil {
		return Bundle{}, err
	}

	bundle := Bundle{
		ID:             uuid.New(),
		Start:          s,
		End:            e,
		Entries:        list,
		MoodNames:      make(map[vocab.Mood]string, len(moods)),
		MoodCategories: make(map[vocab.Mood]string, len(moods)),
		TagNames:       make(map[int64]string, len(tags)),
		TagsByEntry:    tagsByEntry,
		GeneratedAt:    b.now().UTC(),
	}
	for _, m := range moods {
		bundle.MoodNames[m.ID] = m.Name
		bundle.MoodCategories[m.ID] = string(m.Category)
	}
	for _, t := range tags {
		bundle.TagNames[t.ID] = t.Name
	}
	return bundle, nil
}

// TagNamesFor returns the names of the tags of entryID, in id order.
func (b Bundle) TagNamesFor(entryID int64) []string {
	var names []string
	for _, id := range b.TagsByEntry[entryID] {
		if name, ok := b.TagNames[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// CategoryFor is the entry's category, or its primary mood's category when empty.
func (b Bundle) CategoryFor(e entries.Entry) string {
	if e.Category != "" {
		return e.Category
	}
	if c, ok := b.MoodCategories[e.PrimaryMood]; ok {
		return c
	}
	return "-"
}
