package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/entries"
)

var (
	queryFlag      string
	searchMoodFlag string
	searchTagsFlag string
	sortFlag       string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search entries",
	Long: `Search entries by text, date range, moods and tags. Filters combine: an entry
must match the text, fall in the range, carry any of the --moods and all of the --tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := optionalDay(fromFlag)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		end, err := optionalDay(toFlag)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		moods, err := parseMoodList(searchMoodFlag)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		tagIDs, err := resolveTags(cmd.Context(), a.catalog, splitList(searchTagsFlag), false)
		if errors.Is(err, catalog.ErrTagNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
			return nil
		}
		if err != nil {
			return err
		}

		size := pageSizeFlag
		if !cmd.Flags().Changed("page-size") {
			size = cfg.PageSize
		}
		params := entries.SearchParams{
			Query:    queryFlag,
			Start:    start,
			End:      end,
			MoodIDs:  moods,
			TagIDs:   tagIDs,
			Page:     pageFlag,
			PageSize: size,
			Sort:     entries.ParseSortOption(sortFlag),
		}

		total, err := a.entries.SearchCount(cmd.Context(), params)
		if err != nil {
			return err
		}
		list, err := a.entries.Search(cmd.Context(), params)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d matching entries (page %d):\n", total, max(pageFlag, 1))
		printEntryTable(cmd.OutOrStdout(), list)
		return nil
	},
}

func initSearchCmd() {
	searchCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Text to look for in titles and content")
	searchCmd.Flags().StringVar(&fromFlag, "from", "", "First day, YYYY-MM-DD")
	searchCmd.Flags().StringVar(&toFlag, "to", "", "Last day, YYYY-MM-DD")
	searchCmd.Flags().StringVar(&searchMoodFlag, "moods", "", "Comma-separated moods; any may match")
	searchCmd.Flags().StringVar(&searchTagsFlag, "tags", "", "Comma-separated tags; all must match")
	searchCmd.Flags().StringVar(&sortFlag, "sort", "date_desc", "date_desc, date_asc, title_asc or title_desc")
	searchCmd.Flags().IntVar(&pageFlag, "page", 1, "1-based page number")
	searchCmd.Flags().IntVar(&pageSizeFlag, "page-size", 10, "Entries per page (default: DAYBOOK_PAGE_SIZE)")
}
