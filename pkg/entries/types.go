package entries

import (
	"strings"
	"time"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

// Entry is one diary entry. EntryDate is its identity: at most one Entry
// exists per calendar day.
type Entry struct {
	ID             int64       `db:"id" json:"id"`
	EntryDate      dates.Day   `db:"entry_date" json:"entry_date"`
	Title          string      `db:"title" json:"title"`
	Content        string      `db:"content" json:"content"`
	PrimaryMood    vocab.Mood  `db:"primary_mood_id" json:"primary_mood_id"`
	SecondaryMood1 *vocab.Mood `db:"secondary_mood1_id" json:"secondary_mood1_id,omitempty"`
	SecondaryMood2 *vocab.Mood `db:"secondary_mood2_id" json:"secondary_mood2_id,omitempty"`
	Category       string      `db:"category" json:"category"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// Moods returns the non-empty mood slots in slot order.
func (e Entry) Moods() []vocab.Mood {
	out := []vocab.Mood{e.PrimaryMood}
	if e.SecondaryMood1 != nil {
		out = append(out, *e.SecondaryMood1)
	}
	if e.SecondaryMood2 != nil {
		out = append(out, *e.SecondaryMood2)
	}
	return out
}

type SortOption string

const (
	SortDateDesc  SortOption = "date_desc"
	SortDateAsc   SortOption = "date_asc"
	SortTitleAsc  SortOption = "title_asc"
	SortTitleDesc SortOption = "title_desc"
)

// ParseSortOption maps unknown values to SortDateDesc.
func ParseSortOption(s string) SortOption {
	switch o := SortOption(strings.ToLower(strings.TrimSpace(s))); o {
	case SortDateAsc, SortTitleAsc, SortTitleDesc:
		return o
	default:
		return SortDateDesc
	}
}

func (o SortOption) orderBy() string {
	switch o {
	case SortDateAsc:
		return "entry_date ASC"
	case SortTitleAsc:
		return "title COLLATE NOCASE ASC, entry_date DESC"
	case SortTitleDesc:
		return "title COLLATE NOCASE DESC, entry_date DESC"
	default:
		return "entry_date DESC"
	}
}

// SearchParams combine conjunctively. Zero values disable a filter.
type SearchParams struct {
	// Query matches title or content as a case-insensitive substring.
	Query string
	Start *time.Time
	End   *time.Time
	// MoodIDs match an entry when any id equals any of its three mood slots.
	MoodIDs []vocab.Mood
	// TagIDs match an entry only when it carries every id.
	TagIDs   []int64
	Page     int
	PageSize int
	Sort     SortOption
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	return page, size
}
