package export

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// JSONRenderer writes the bundle as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Extension() string { return ".json" }

func (JSONRenderer) Render(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

var (
	blockBreak = regexp.MustCompile(`(?i)</?(p|li|ul|ol|h[1-6]|blockquote|br)[^>]*>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n{2,}`)
)

// TextRenderer writes a plain-text document with one section per entry.
type TextRenderer struct{}

func (TextRenderer) Extension() string { return ".txt" }

func (TextRenderer) Render(w io.Writer, b Bundle) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Journal Export %s to %s\n\n", b.Start, b.End)

	for _, e := range b.Entries {
		mood := "-"
		if name, ok := b.MoodNames[e.PrimaryMood]; ok {
			mood = name
		}
		var secondary []string
		for _, m := range e.Moods()[1:] {
			if name, ok := b.MoodNames[m]; ok {
				secondary = append(secondary, name)
			}
		}
		if len(secondary) > 0 {
			mood += " (+" + strings.Join(secondary, ", ") + ")"
		}
		tags := "-"
		if names := b.TagNamesFor(e.ID); len(names) > 0 {
			tags = strings.Join(names, ", ")
		}

		fmt.Fprintf(&sb, "%s - %s\n", e.EntryDate, e.Title)
		fmt.Fprintf(&sb, "Mood: %s\n", mood)
		fmt.Fprintf(&sb, "Category: %s\n", b.CategoryFor(e))
		fmt.Fprintf(&sb, "Tags: %s\n", tags)
		if text := PlainText(e.Content); text != "" {
			sb.WriteString("\n" + text + "\n")
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// PlainText flattens an HTML fragment, one line per block element.
func PlainText(html string) string {
	s := blockBreak.ReplaceAllString(html, "\n")
	s = anyTag.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n")
	return strings.TrimSpace(s)
}
