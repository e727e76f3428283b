package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/entries"
)

var (
	entryDateFlag      string
	entryTitleFlag     string
	entryContentFlag   string
	entryMoodFlag      string
	entrySecondaryFlag string
	entryCategoryFlag  string
	entryTagsFlag      string

	pageFlag     int
	pageSizeFlag int
	fromFlag     string
	toFlag       string
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage journal entries",
	Long:  `Write, read, list and delete the one-per-day journal entries.`,
}

var upsertEntryCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Write the entry of a day",
	Long: `Creates the entry of --date (today by default), or overwrites every field of
the existing one. --tags replaces the entry's tags when given; unknown tags are created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(entryDateFlag)
		if err != nil {
			return err
		}
		primary, err := parseMoodList(entryMoodFlag)
		if err != nil {
			return err
		}
		if len(primary) != 1 {
			return errors.New("--mood must name exactly one mood")
		}
		secondary, err := parseMoodList(entrySecondaryFlag)
		if err != nil {
			return err
		}
		if len(secondary) > 2 {
			return errors.New("at most two --secondary moods are allowed")
		}

		e := entries.Entry{
			EntryDate:   dates.DayOf(day),
			Title:       entryTitleFlag,
			Content:     entryContentFlag,
			PrimaryMood: primary[0],
			Category:    entryCategoryFlag,
		}
		if len(secondary) > 0 {
			e.SecondaryMood1 = &secondary[0]
		}
		if len(secondary) > 1 {
			e.SecondaryMood2 = &secondary[1]
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		saved, err := a.entries.UpsertForDay(cmd.Context(), e)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		if cmd.Flags().Changed("tags") {
			ids, err := resolveTags(cmd.Context(), a.catalog, splitList(entryTagsFlag), true)
			if err != nil {
				return err
			}
			if err := a.catalog.SetTagsForEntry(cmd.Context(), saved.ID, ids); err != nil {
				return fmt.Errorf("entry saved, but tagging failed: %w", err)
			}
		}

		tags, err := a.catalog.GetTagsForEntry(cmd.Context(), saved.ID)
		if err != nil {
			cmd.PrintErrf("Failed to retrieve tags for entry: %v\n", err)
		}
		printEntry(cmd.OutOrStdout(), saved, tags)
		return nil
	},
}

var getEntryCmd = &cobra.Command{
	Use:   "get [date]",
	Short: "Show the entry of a day (today by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(firstArg(args))
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.entries.GetByDate(cmd.Context(), day)
		if errors.Is(err, entries.ErrEntryNotFound) {
			return fmt.Errorf("no entry for %s", dates.Key(day))
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		tags, err := a.catalog.GetTagsForEntry(cmd.Context(), e.ID)
		if err != nil {
			return fmt.Errorf("failed to get tags for entry: %w", err)
		}
		printEntry(cmd.OutOrStdout(), e, tags)
		return nil
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete [date]",
	Short: "Delete the entry of a day",
	Long:  `Permanently deletes the entry of the given day together with its tag links.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dates.Parse(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.entries.DeleteByDate(cmd.Context(), day)
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		if !deleted {
			return fmt.Errorf("no entry for %s", dates.Key(day))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry for %s deleted.\n", dates.Key(day))
		return nil
	},
}

var listEntriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		size := pageSizeFlag
		if !cmd.Flags().Changed("page-size") {
			size = cfg.PageSize
		}
		list, err := a.entries.GetPaged(cmd.Context(), pageFlag, size)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		total, err := a.entries.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}

		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entries (page %d, %d total):\n", max(pageFlag, 1), total)
		printEntryTable(cmd.OutOrStdout(), list)
		return nil
	},
}

var rangeEntriesCmd = &cobra.Command{
	Use:   "range",
	Short: "List the entries between two days, inclusive",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := dates.Parse(fromFlag)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := parseDay(toFlag)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.entries.GetEntriesInRange(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No entries between %s and %s.\n", dates.Key(from), dates.Key(to))
			return nil
		}
		printEntryTable(cmd.OutOrStdout(), list)
		return nil
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func initEntriesCmd() {
	upsertEntryCmd.Flags().StringVar(&entryDateFlag, "date", "", "Day of the entry, YYYY-MM-DD (default: today)")
	upsertEntryCmd.Flags().StringVar(&entryTitleFlag, "title", "", "Entry title")
	upsertEntryCmd.Flags().StringVar(&entryContentFlag, "content", "", "Entry body (HTML allowed)")
	upsertEntryCmd.Flags().StringVar(&entryMoodFlag, "mood", "", "Primary mood, e.g. Happy")
	upsertEntryCmd.Flags().StringVar(&entrySecondaryFlag, "secondary", "", "Up to two comma-separated secondary moods")
	upsertEntryCmd.Flags().StringVar(&entryCategoryFlag, "category", "", "Entry category (default: the primary mood's category)")
	upsertEntryCmd.Flags().StringVar(&entryTagsFlag, "tags", "", "Comma-separated tags; replaces the entry's tags")
	upsertEntryCmd.MarkFlagRequired("mood")

	listEntriesCmd.Flags().IntVar(&pageFlag, "page", 1, "1-based page number")
	listEntriesCmd.Flags().IntVar(&pageSizeFlag, "page-size", 10, "Entries per page (default: DAYBOOK_PAGE_SIZE)")

	rangeEntriesCmd.Flags().StringVar(&fromFlag, "from", "", "First day, YYYY-MM-DD")
	rangeEntriesCmd.Flags().StringVar(&toFlag, "to", "", "Last day, YYYY-MM-DD (default: today)")
	rangeEntriesCmd.MarkFlagRequired("from")

	entriesCmd.AddCommand(upsertEntryCmd, getEntryCmd, deleteEntryCmd, listEntriesCmd, rangeEntriesCmd)
}
