package vocab

import "strings"

// Tag categories used for analytics breakdowns.
const (
	TagCategoryWorkStudy     = "Work & Study"
	TagCategoryRelationships = "Relationships"
	TagCategoryHealth        = "Health"
	TagCategoryTravelEvents  = "Travel & Events"
	TagCategoryLifestyle     = "Lifestyle"
	TagCategoryWellbeing     = "Wellbeing"
	TagCategoryCustom        = "Custom"
)

var prebuiltTags = []string{
	"Work", "Career", "Studies", "Family", "Friends", "Relationships",
	"Health", "Fitness", "Personal Growth", "Self-care", "Hobbies", "Travel",
	"Nature", "Finance", "Spirituality", "Birthday", "Holiday", "Vacation",
	"Celebration", "Exercise", "Reading", "Writing", "Cooking", "Meditation",
	"Yoga", "Music", "Shopping", "Parenting", "Projects", "Planning",
	"Reflection",
}

// keys are lower-cased tag names
var tagCategories = map[string]string{
	"work":     TagCategoryWorkStudy,
	"career":   TagCategoryWorkStudy,
	"studies":  TagCategoryWorkStudy,
	"projects": TagCategoryWorkStudy,
	"planning": TagCategoryWorkStudy,

	"family":        TagCategoryRelationships,
	"friends":       TagCategoryRelationships,
	"relationships": TagCategoryRelationships,
	"parenting":     TagCategoryRelationships,

	"health":   TagCategoryHealth,
	"fitness":  TagCategoryHealth,
	"exercise": TagCategoryHealth,
	"yoga":     TagCategoryHealth,

	"travel":      TagCategoryTravelEvents,
	"nature":      TagCategoryTravelEvents,
	"birthday":    TagCategoryTravelEvents,
	"holiday":     TagCategoryTravelEvents,
	"vacation":    TagCategoryTravelEvents,
	"celebration": TagCategoryTravelEvents,

	"hobbies":  TagCategoryLifestyle,
	"finance":  TagCategoryLifestyle,
	"reading":  TagCategoryLifestyle,
	"writing":  TagCategoryLifestyle,
	"cooking":  TagCategoryLifestyle,
	"music":    TagCategoryLifestyle,
	"shopping": TagCategoryLifestyle,

	"personal growth": TagCategoryWellbeing,
	"self-care":       TagCategoryWellbeing,
	"spirituality":    TagCategoryWellbeing,
	"meditation":      TagCategoryWellbeing,
	"reflection":      TagCategoryWellbeing,
}

// PrebuiltTags returns the tag names seeded on first initialization.
func PrebuiltTags() []string {
	out := make([]string, len(prebuiltTags))
	copy(out, prebuiltTags)
	return out
}

// MapTagCategory classifies a tag name. Unknown names are "Custom".
func MapTagCategory(name string) string {
	if category, ok := tagCategories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return category
	}
	return TagCategoryCustom
}

// TagCategories returns every category MapTagCategory can produce.
func TagCategories() []string {
	return []string{
		TagCategoryWorkStudy,
		TagCategoryRelationships,
		TagCategoryHealth,
		TagCategoryTravelEvents,
		TagCategoryLifestyle,
		TagCategoryWellbeing,
		TagCategoryCustom,
	}
}
