package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/entries"
)

var tagCategoryFlag string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
	Long:  `List and create tags, and replace the tags of an entry.`,
}

var listTagsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		tags, err := a.catalog.ListTags(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		if len(tags) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ID | Name | Category | Prebuilt")
		fmt.Fprintln(cmd.OutOrStdout(), "------------------------------------------------------------")
		for _, t := range tags {
			fmt.Fprintf(cmd.OutOrStdout(), "%d | %s | %s | %t\n", t.ID, t.Name, t.Category, t.IsPrebuilt)
		}
		return nil
	},
}

var addTagCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a custom tag",
	Long:  `Adds a tag. If a tag with the same name exists (ignoring case) it is returned unchanged.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name := strings.Join(args, " ")
		var t catalog.Tag
		if tagCategoryFlag == "" {
			t, err = a.catalog.AddCustomTag(cmd.Context(), name)
		} else {
			t, err = a.catalog.AddTag(cmd.Context(), name, false, tagCategoryFlag)
		}
		if err != nil {
			return fmt.Errorf("failed to add tag: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tag %d: %s (%s)\n", t.ID, t.Name, t.Category)
		return nil
	},
}

var setTagsCmd = &cobra.Command{
	Use:   "set [date] [tag]...",
	Short: "Replace the tags of a day's entry",
	Long:  `Replaces the tags of the entry of [date] with the given tags. Unknown tags are created; no tags clears them.`,
	Args:  cobra.MinimumNArgs(1),
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

		e, err := a.entries.GetByDate(cmd.Context(), day)
		if errors.Is(err, entries.ErrEntryNotFound) {
			return fmt.Errorf("no entry for %s", dates.Key(day))
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		ids, err := resolveTags(cmd.Context(), a.catalog, args[1:], true)
		if err != nil {
			return err
		}
		if err := a.catalog.SetTagsForEntry(cmd.Context(), e.ID, ids); err != nil {
			return fmt.Errorf("failed to tag entry: %w", err)
		}
		tags, err := a.catalog.GetTagsForEntry(cmd.Context(), e.ID)
		if err != nil {
			return fmt.Errorf("failed to get tags for entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry for %s tagged with: %s\n", dates.Key(day), tagNames(tags))
		return nil
	},
}

var showTagsCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the tags of a day's entry",
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
		fmt.Fprintln(cmd.OutOrStdout(), tagNames(tags))
		return nil
	},
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "Inspect the mood catalog",
}

var listMoodsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the moods by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, g := range catalog.MoodsByCategory() {
			rows, err := a.catalog.MoodsInCategory(cmd.Context(), g.Category)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", g.Category)
			for _, m := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "  %2d  %s\n", int(m.ID), m.Name)
			}
		}
		return nil
	},
}

func initTagsCmd() {
	addTagCmd.Flags().StringVar(&tagCategoryFlag, "category", "", "Tag category (default: Custom)")
	tagsCmd.AddCommand(listTagsCmd, addTagCmd, setTagsCmd, showTagsCmd)
}

func initMoodsCmd() {
	moodsCmd.AddCommand(listMoodsCmd)
}
