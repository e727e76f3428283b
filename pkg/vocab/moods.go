// Package vocab holds the controlled vocabulary of daybook: the fixed mood
// catalog, the prebuilt tag names and the tag category table.
package vocab

import (
	"fmt"
	"strings"
)

// MoodCategory groups moods for display and analytics.
type MoodCategory string

const (
	CategoryPositive MoodCategory = "Positive"
	CategoryNeutral  MoodCategory = "Neutral"
	CategoryNegative MoodCategory = "Negative"
)

// Mood is a mood code. Codes are persisted as the moods.id column, so they
// must never be renumbered.
type Mood int

const (
	Happy Mood = iota + 1
	Excited
	Relaxed
	Grateful
	Confident

	Calm
	Thoughtful
	Curious
	Nostalgic
	Bored

	Sad
	Angry
	Stressed
	Lonely
	Anxious
)

type moodInfo struct {
	name     string
	category MoodCategory
}

var moodTable = map[Mood]moodInfo{
	Happy:     {"Happy", CategoryPositive},
	Excited:   {"Excited", CategoryPositive},
	Relaxed:   {"Relaxed", CategoryPositive},
	Grateful:  {"Grateful", CategoryPositive},
	Confident: {"Confident", CategoryPositive},

	Calm:       {"Calm", CategoryNeutral},
	Thoughtful: {"Thoughtful", CategoryNeutral},
	Curious:    {"Curious", CategoryNeutral},
	Nostalgic:  {"Nostalgic", CategoryNeutral},
	Bored:      {"Bored", CategoryNeutral},

	Sad:      {"Sad", CategoryNegative},
	Angry:    {"Angry", CategoryNegative},
	Stressed: {"Stressed", CategoryNegative},
	Lonely:   {"Lonely", CategoryNegative},
	Anxious:  {"Anxious", CategoryNegative},
}

// Valid reports whether m is one of the fifteen catalog moods.
func (m Mood) Valid() bool {
	_, ok := moodTable[m]
	return ok
}

func (m Mood) Name() string {
	if info, ok := moodTable[m]; ok {
		return info.name
	}
	return ""
}

func (m Mood) Category() MoodCategory {
	if info, ok := moodTable[m]; ok {
		return info.category
	}
	return ""
}

func (m Mood) String() string {
	if name := m.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("Mood(%d)", int(m))
}

// AllMoods returns the catalog in seed order: positive, neutral, negative,
// five moods each.
func AllMoods() []Mood {
	moods := make([]Mood, 0, len(moodTable))
	for m := Happy; m <= Anxious; m++ {
		moods = append(moods, m)
	}
	return moods
}

// MoodCategories returns the categories in display order.
func MoodCategories() []MoodCategory {
	return []MoodCategory{CategoryPositive, CategoryNeutral, CategoryNegative}
}

// ParseMood resolves a mood by name, ignoring case and surrounding space.
func ParseMood(name string) (Mood, error) {
	trimmed := strings.TrimSpace(name)
	for _, m := range AllMoods() {
		if strings.EqualFold(m.Name(), trimmed) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mood: %q", name)
}
