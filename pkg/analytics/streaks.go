package analytics

import (
	"context"
	"time"

	"github.com/unowned-ai/daybook/pkg/dates"
)

type Streaks struct {
	Current     int         `json:"current"`
	Longest     int         `json:"longest"`
	MissedDates []dates.Day `json:"missed_dates"`
}

// CurrentStreak counts consecutive days with entries ending at end. It is 0
// when end itself has no entry.
func CurrentStreak(set dates.Set, end time.Time) int {
	streak := 0
	for cursor := dates.Normalize(end); set.Has(cursor); cursor = cursor.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive calendar days in set.
func LongestStreak(set dates.Set) int {
	days := set.Sorted()
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if dates.Key(days[i-1].AddDate(0, 0, 1)) == dates.Key(days[i]) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// MissedDates lists the days of [start, end] absent from set, ascending.
func MissedDates(set dates.Set, start, end time.Time) []dates.Day {
	missed := []dates.Day{}
	last := dates.Key(end)
	for cursor := dates.Normalize(start); dates.Key(cursor) <= last; cursor = cursor.AddDate(0, 0, 1) {
		if !set.Has(cursor) {
			missed = append(missed, dates.DayOf(cursor))
		}
	}
	return missed
}

// Streaks computes the current streak ending at end and the longest streak
// over every entry, plus the days of [start, end] without an entry.
func (en *Engine) Streaks(ctx context.Context, start, end time.Time) (Streaks, error) {
	s, e := normalizeRange(start, end)

	all, err := en.entries.GetAllEntryDates(ctx)
	if err != nil {
		return Streaks{}, err
	}
	inRange, err := en.entries.GetEntryDatesInRange(ctx, s.Time, e.Time)
	if err != nil {
		return Streaks{}, err
	}

	return Streaks{
		Current:     CurrentStreak(all, e.Time),
		Longest:     LongestStreak(all),
		MissedDates: MissedDates(inRange, s.Time, e.Time),
	}, nil
}

// StreaksForLastDays is Streaks over the rangeDays days ending today.
func (en *Engine) StreaksForLastDays(ctx context.Context, rangeDays int, today time.Time) (Streaks, error) {
	if rangeDays < 1 {
		rangeDays = 1
	}
	end := dates.Normalize(today)
	return en.Streaks(ctx, end.AddDate(0, 0, -(rangeDays-1)), end)
}
