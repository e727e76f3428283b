package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/dates"
)

var streakDaysFlag int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Mood, tag and streak statistics",
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize moods, tags and word counts over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		end, err := parseDay(toFlag)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		start := end.AddDate(0, 0, -30)
		if fromFlag != "" {
			if start, err = dates.Parse(fromFlag); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.analytics.Summary(cmd.Context(), start, end)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Summary %s to %s\n", s.Start, s.End)
		fmt.Fprintf(w, "Entries:            %d\n", s.TotalEntries)
		fmt.Fprintf(w, "Most frequent mood: %s\n", s.MostFrequentMood)

		fmt.Fprintln(w, "\nMood categories:")
		for _, c := range s.MoodCategories {
			fmt.Fprintf(w, "  %-9s %3d  %5.1f%%\n", c.Category, c.Count, c.Percentage)
		}
		if len(s.MoodCounts) > 0 {
			fmt.Fprintln(w, "\nMoods:")
			for _, m := range s.MoodCounts {
				fmt.Fprintf(w, "  %-10s %3d\n", m.Name, m.Count)
			}
		}
		if len(s.TagCounts) > 0 {
			fmt.Fprintln(w, "\nTags:")
			for _, t := range s.TagCounts {
				fmt.Fprintf(w, "  %-20s %3d  %5.1f%%\n", t.Name, t.Count, t.Percentage)
			}
		}
		if len(s.TagCategories) > 0 {
			fmt.Fprintln(w, "\nTag categories:")
			for _, c := range s.TagCategories {
				fmt.Fprintf(w, "  %-20s %3d  %5.1f%%\n", c.Category, c.Count, c.Percentage)
			}
		}
		if len(s.WordCountTrend) > 0 {
			fmt.Fprintln(w, "\nAverage words per day:")
			for _, p := range s.WordCountTrend {
				fmt.Fprintf(w, "  %s  %.1f\n", p.Day, p.AverageWords)
			}
		}
		return nil
	},
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show the current and longest streaks and recently missed days",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		days := streakDaysFlag
		if !cmd.Flags().Changed("days") {
			days = cfg.StreakRangeDays
		}
		st, err := a.analytics.StreaksForLastDays(cmd.Context(), days, dates.Today())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Current streak: %d\n", st.Current)
		fmt.Fprintf(w, "Longest streak: %d\n", st.Longest)
		missed := make([]string, len(st.MissedDates))
		for i, d := range st.MissedDates {
			missed[i] = d.Key()
		}
		fmt.Fprintf(w, "Missed in the last %d days: %d\n", days, len(missed))
		if len(missed) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(missed, ", "))
		}
		return nil
	},
}

func initStatsCmd() {
	summaryCmd.Flags().StringVar(&fromFlag, "from", "", "First day, YYYY-MM-DD (default: 30 days before --to)")
	summaryCmd.Flags().StringVar(&toFlag, "to", "", "Last day, YYYY-MM-DD (default: today)")
	streaksCmd.Flags().IntVar(&streakDaysFlag, "days", 30, "Days, ending today, scanned for missed entries (default: DAYBOOK_STREAK_RANGE_DAYS)")
	statsCmd.AddCommand(summaryCmd, streaksCmd)
}
