package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/unowned-ai/daybook/pkg/analytics"
	"github.com/unowned-ai/daybook/pkg/catalog"
	"github.com/unowned-ai/daybook/pkg/dates"
	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/users"
	"github.com/unowned-ai/daybook/pkg/utils"
	"github.com/unowned-ai/daybook/pkg/vocab"
)

// app bundles an initialized store with the services commands use.
type app struct {
	path      string
	store     *pkgdb.Store
	entries   *entries.Repository
	catalog   *catalog.Catalog
	analytics *analytics.Engine
	users     *users.Repository
}

func openApp(ctx context.Context) (*app, error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store := pkgdb.NewStore(pkgdb.Options{Path: path, WAL: cfg.WAL, Sync: cfg.Sync}, log)
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	repo := entries.NewRepository(store)
	return &app{
		path:      path,
		store:     store,
		entries:   repo,
		catalog:   catalog.New(store),
		analytics: analytics.NewEngine(store, repo),
		users:     users.New(store),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// parseDay parses s as a day, or returns today when s is empty.
func parseDay(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return dates.Today(), nil
	}
	return dates.Parse(s)
}

func optionalDay(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := dates.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMoodList(s string) ([]vocab.Mood, error) {
	var out []vocab.Mood
	for _, name := range splitList(s) {
		m, err := vocab.ParseMood(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// resolveTags maps tag names to ids. Missing tags are created when create is
// set and reported as catalog.ErrTagNotFound otherwise.
func resolveTags(ctx context.Context, cat *catalog.Catalog, names []string, create bool) ([]int64, error) {
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

func tagNames(tags []catalog.Tag) string {
	if len(tags) == 0 {
		return "None"
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func moodNames(e entries.Entry) string {
	moods := e.Moods()
	names := make([]string, len(moods))
	for i, m := range moods {
		names[i] = m.Name()
	}
	return strings.Join(names, ", ")
}

func printEntry(w io.Writer, e entries.Entry, tags []catalog.Tag) {
	fmt.Fprintln(w, "Entry Details:")
	fmt.Fprintf(w, "Date:       %s\n", e.EntryDate)
	fmt.Fprintf(w, "Title:      %s\n", e.Title)
	fmt.Fprintf(w, "Moods:      %s\n", moodNames(e))
	fmt.Fprintf(w, "Category:   %s\n", e.Category)
	fmt.Fprintf(w, "Tags:       %s\n", tagNames(tags))
	fmt.Fprintf(w, "Created At: %s\n", e.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Updated At: %s\n", e.UpdatedAt.Local().Format(time.RFC3339))
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, e.Content)
}

func printEntryTable(w io.Writer, list []entries.Entry) {
	fmt.Fprintln(w, "Date | Title | Moods | Category")
	fmt.Fprintln(w, "------------------------------------------------------------")
	for _, e := range list {
		fmt.Fprintf(w, "%s | %s | %s | %s\n", e.EntryDate, e.Title, moodNames(e), e.Category)
	}
}
