package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

// entryView is an entry as returned by the tools, with names resolved.
type entryView struct {
	entries.Entry
	PrimaryMoodName string   `json:"primary_mood"`
	SecondaryMoods  []string `json:"secondary_moods,omitempty"`
	Tags            []string `json:"tags"`
}

func viewEntry(ctx context.Context, cat *catalog.Catalog, e entries.Entry) (entryView, error) {
	v := entryView{Entry: e, PrimaryMoodName: e.PrimaryMood.Name(), Tags: []string{}}
	for _, m := range e.Moods()[1:] {
		v.SecondaryMoods = append(v.SecondaryMoods, m.Name())
	}
	tags, err := cat.GetTagsForEntry(ctx, e.ID)
	if err != nil {
		return entryView{}, err
	}
	for _, t := range tags {
		v.Tags = append(v.Tags, t.Name)
	}
	return v, nil
}

func viewEntries(ctx context.Context, cat *catalog.Catalog, list []entries.Entry) ([]entryView, error) {
	out := make([]entryView, 0, len(list))
	for _, e := range list {
		v, err := viewEntry(ctx, cat, e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func stringArg(request mcp.CallToolRequest, name string) string {
	s, _ := request.Params.Arguments[name].(string)
	return strings.TrimSpace(s)
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(request mcp.CallToolRequest, name string, def int) int {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func dateArg(request mcp.CallToolRequest, name string) (*time.Time, error) {
	s := stringArg(request, name)
	if s == "" {
		return nil, nil
	}
	t, err := dates.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", name, err)
	}
	return &t, nil
}

// parseList splits a comma-separated argument, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMoods(s string) ([]vocab.Mood, error) {
	var out []vocab.Mood
	for _, name := range parseList(s) {
		m, err := vocab.ParseMood(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// tagIDs resolves names to tag ids, creating missing tags when create is set.
func tagIDs(ctx context.Context, cat *catalog.Catalog, names []string, create bool) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var (
			t   catalog.Tag
			err error
		)
		if create {
			t, err = cat.AddTag(ctx, name, false, "")
		} else {
			t, err = cat.GetTagByName(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("tag '%s': %w", name, err)
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
