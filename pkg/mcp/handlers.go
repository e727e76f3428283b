package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/entries"
)

// RegisterTools registers every daybook tool on s and returns their names.
func RegisterTools(s *server.MCPServer, d Deps) []string {
	RegisterPingTool(s)
	RegisterUpsertEntryTool(s, d)
	RegisterGetEntryTool(s, d)
	RegisterDeleteEntryTool(s, d)
	RegisterListEntriesTool(s, d)
	RegisterSearchEntriesTool(s, d)
	RegisterListMoodsTool(s, d)
	RegisterListTagsTool(s, d)
	RegisterAddTagTool(s, d)
	RegisterSetEntryTagsTool(s, d)
	RegisterGetSummaryTool(s, d)
	RegisterGetStreaksTool(s, d)
	return []string{
		"ping", "upsert_entry", "get_entry", "delete_entry", "list_entries", "search_entries",
		"list_moods", "list_tags", "add_tag", "set_entry_tags", "get_summary", "get_streaks",
	}
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Daybook MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_daybook"), nil
}

// RegisterUpsertEntryTool registers the upsert_entry tool.
func RegisterUpsertEntryTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("upsert_entry",
		mcp.WithDescription("Creates the journal entry of a day, or overwrites it when the day already has one."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD or RFC3339.")),
		mcp.WithString("primary_mood", mcp.Required(), mcp.Description("Mood name, e.g. Happy, Calm, Anxious.")),
		mcp.WithString("title", mcp.Description("Entry title.")),
		mcp.WithString("content", mcp.Description("Entry body; HTML is allowed.")),
		mcp.WithString("secondary_moods", mcp.Description("Up to two comma-separated mood names.")),
		mcp.WithString("category", mcp.Description("Optional category; defaults to the primary mood's category.")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tag names. When given, they replace the entry's tags; unknown tags are created.")),
	)
	s.AddTool(tool, upsertEntryHandler(d))
}

func upsertEntryHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'date' parameter is required."), nil
		}

		moods, err := parseMoods(stringArg(request, "primary_mood"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(moods) != 1 {
			return mcp.NewToolResultError("'primary_mood' must name exactly one mood."), nil
		}
		secondary, err := parseMoods(stringArg(request, "secondary_moods"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(secondary) > 2 {
			return mcp.NewToolResultError("at most two 'secondary_moods' are allowed."), nil
		}

		e := entries.Entry{
			EntryDate:   dates.DayOf(*day),
			Title:       stringArg(request, "title"),
			Content:     stringArg(request, "content"),
			PrimaryMood: moods[0],
			Category:    stringArg(request, "category"),
		}
		if len(secondary) > 0 {
			e.SecondaryMood1 = &secondary[0]
		}
		if len(secondary) > 1 {
			e.SecondaryMood2 = &secondary[1]
		}

		saved, err := d.Entries.UpsertForDay(ctx, e)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save entry: %v", err)), nil
		}

		if _, ok := request.Params.Arguments["tags"]; ok {
			ids, err := tagIDs(ctx, d.Catalog, parseList(stringArg(request, "tags")), true)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve tags: %v", err)), nil
			}
			if err := d.Catalog.SetTagsForEntry(ctx, saved.ID, ids); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to tag entry: %v", err)), nil
			}
		}

		v, err := viewEntry(ctx, d.Catalog, saved)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry tags: %v", err)), nil
		}
		return jsonResult(v)
	}
}

// RegisterGetEntryTool registers the get_entry tool.
func RegisterGetEntryTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("get_entry",
		mcp.WithDescription("Retrieves the journal entry of a day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD or RFC3339.")),
	)
	s.AddTool(tool, getEntryHandler(d))
}

func getEntryHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'date' parameter is required."), nil
		}

		e, err := d.Entries.GetByDate(ctx, *day)
		if errors.Is(err, entries.ErrEntryNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("No entry for %s.", dates.Key(*day))), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving entry: %v", err)), nil
		}

		v, err := viewEntry(ctx, d.Catalog, e)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry tags: %v", err)), nil
		}
		return jsonResult(v)
	}
}

// RegisterDeleteEntryTool registers the delete_entry tool.
func RegisterDeleteEntryTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes the journal entry of a day together with its tag links."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD or RFC3339.")),
	)
	s.AddTool(tool, deleteEntryHandler(d))
}

func deleteEntryHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'date' parameter is required."), nil
		}

		deleted, err := d.Entries.DeleteByDate(ctx, *day)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entry: %v", err)), nil
		}
		if !deleted {
			return mcp.NewToolResultError(fmt.Sprintf("No entry for %s.", dates.Key(*day))), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry for %s deleted.", dates.Key(*day))), nil
	}
}

// RegisterListEntriesTool registers the list_entries tool.
func RegisterListEntriesTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("list_entries",
		mcp.WithDescription("Lists journal entries newest first, one page at a time."),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1).")),
		mcp.WithNumber("page_size", mcp.Description("Entries per page (default: the configured page size).")),
	)
	s.AddTool(tool, listEntriesHandler(d))
}

func listEntriesHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := d.Entries.GetPaged(ctx, intArg(request, "page", 1), intArg(request, "page_size", d.Defaults.PageSize))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list entries: %v", err)), nil
		}
		views, err := viewEntries(ctx, d.Catalog, list)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry tags: %v", err)), nil
		}
		return jsonResult(views)
	}
}

type searchResult struct {
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Entries  []entryView `json:"entries"`
}

// RegisterSearchEntriesTool registers the search_entries tool.
func RegisterSearchEntriesTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("search_entries",
		mcp.WithDescription("Searches journal entries by text, date range, moods and tags."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against title and content.")),
		mcp.WithString("start_date", mcp.Description("Earliest day, inclusive.")),
		mcp.WithString("end_date", mcp.Description("Latest day, inclusive.")),
		mcp.WithString("moods", mcp.Description("Comma-separated mood names; an entry matches if any of its moods is listed.")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names; an entry matches only if it has all of them.")),
		mcp.WithString("sort", mcp.Description("date_desc (default), date_asc, title_asc or title_desc.")),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1).")),
		mcp.WithNumber("page_size", mcp.Description("Entries per page (default: the configured page size).")),
	)
	s.AddTool(tool, searchEntriesHandler(d))
}

func searchEntriesHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := dateArg(request, "start_date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		end, err := dateArg(request, "end_date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		moods, err := parseMoods(stringArg(request, "moods"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		params := entries.SearchParams{
			Query:    stringArg(request, "query"),
			Start:    start,
			End:      end,
			MoodIDs:  moods,
			Page:     intArg(request, "page", 1),
			PageSize: intArg(request, "page_size", d.Defaults.PageSize),
			Sort:     entries.ParseSortOption(stringArg(request, "sort")),
		}
		result := searchResult{Page: params.Page, PageSize: params.PageSize, Entries: []entryView{}}

		ids, err := tagIDs(ctx, d.Catalog, parseList(stringArg(request, "tags")), false)
		if errors.Is(err, catalog.ErrTagNotFound) {
			// An unknown tag can never be carried, so nothing matches.
			return jsonResult(result)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve tags: %v", err)), nil
		}
		params.TagIDs = ids

		list, err := d.Entries.Search(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search entries: %v", err)), nil
		}
		result.Total, err = d.Entries.SearchCount(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to count entries: %v", err)), nil
		}
		result.Entries, err = viewEntries(ctx, d.Catalog, list)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry tags: %v", err)), nil
		}
		return jsonResult(result)
	}
}

// RegisterListMoodsTool registers the list_moods tool.
func RegisterListMoodsTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("list_moods",
		mcp.WithDescription("Lists the fifteen moods with their ids and categories."),
	)
	s.AddTool(tool, listMoodsHandler(d))
}

func listMoodsHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		moods, err := d.Catalog.ListMoods(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list moods: %v", err)), nil
		}
		return jsonResult(moods)
	}
}

// RegisterListTagsTool registers the list_tags tool.
func RegisterListTagsTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("list_tags",
		mcp.WithDescription("Lists all tags, prebuilt and custom."),
	)
	s.AddTool(tool, listTagsHandler(d))
}

func listTagsHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := d.Catalog.ListTags(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tags: %v", err)), nil
		}
		return jsonResult(tags)
	}
}

// RegisterAddTagTool registers the add_tag tool.
func RegisterAddTagTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("add_tag",
		mcp.WithDescription("Adds a custom tag, or returns the existing tag with that name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tag name; matched case-insensitively.")),
		mcp.WithString("category", mcp.Description("Optional tag category; derived from the name when omitted.")),
	)
	s.AddTool(tool, addTagHandler(d))
}

func addTagHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := stringArg(request, "name")
		if name == "" {
			return mcp.NewToolResultError("'name' parameter is required and must be a non-empty string."), nil
		}
		t, err := d.Catalog.AddTag(ctx, name, false, stringArg(request, "category"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add tag '%s': %v", name, err)), nil
		}
		return jsonResult(t)
	}
}

// RegisterSetEntryTagsTool registers the set_entry_tags tool.
func RegisterSetEntryTagsTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("set_entry_tags",
		mcp.WithDescription("Replaces the tags of a day's entry. Unknown tags are created; an empty list clears them."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD or RFC3339.")),
		mcp.WithString("tags", mcp.Required(), mcp.Description("Comma-separated tag names.")),
	)
	s.AddTool(tool, setEntryTagsHandler(d))
}

func setEntryTagsHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'date' parameter is required."), nil
		}

		e, err := d.Entries.GetByDate(ctx, *day)
		if errors.Is(err, entries.ErrEntryNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("No entry for %s.", dates.Key(*day))), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving entry: %v", err)), nil
		}

		ids, err := tagIDs(ctx, d.Catalog, parseList(stringArg(request, "tags")), true)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve tags: %v", err)), nil
		}
		if err := d.Catalog.SetTagsForEntry(ctx, e.ID, ids); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to tag entry: %v", err)), nil
		}

		v, err := viewEntry(ctx, d.Catalog, e)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry tags: %v", err)), nil
		}
		return jsonResult(v)
	}
}

// RegisterGetSummaryTool registers the get_summary tool.
func RegisterGetSummaryTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("get_summary",
		mcp.WithDescription("Summarizes moods, tags and word counts over a date range."),
		mcp.WithString("start_date", mcp.Description("First day, inclusive; defaults to 30 days before end_date.")),
		mcp.WithString("end_date", mcp.Description("Last day, inclusive; defaults to today.")),
	)
	s.AddTool(tool, getSummaryHandler(d))
}

func getSummaryHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := dateArg(request, "start_date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		end, err := dateArg(request, "end_date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if end == nil {
			today := dates.Today()
			end = &today
		}
		if start == nil {
			from := end.AddDate(0, 0, -30)
			start = &from
		}

		summary, err := d.Analytics.Summary(ctx, *start, *end)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute summary: %v", err)), nil
		}
		return jsonResult(summary)
	}
}

// RegisterGetStreaksTool registers the get_streaks tool.
func RegisterGetStreaksTool(s *server.MCPServer, d Deps) {
	tool := mcp.NewTool("get_streaks",
		mcp.WithDescription("Reports the current and longest journaling streaks and the days missed recently."),
		mcp.WithNumber("range_days", mcp.Description("Number of days, ending today, scanned for missed days.")),
	)
	s.AddTool(tool, getStreaksHandler(d))
}

func getStreaksHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rangeDays := intArg(request, "range_days", d.Defaults.StreakRangeDays)
		streaks, err := d.Analytics.StreaksForLastDays(ctx, rangeDays, dates.Today())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute streaks: %v", err)), nil
		}
		return jsonResult(streaks)
	}
}
