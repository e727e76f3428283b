package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/dates"
	"github.com/unowned-ai/daybook/pkg/export"
)

var (
	exportFormatFlag string
	exportOutFlag    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the entries of a date range to a file",
	Long: `Writes the entries between --from and --to (inclusive) with their moods and
tags. The default file name is Journal_<from>_<to> with the format's extension,
placed in the current directory or in --out when it is a directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r export.Renderer
		switch exportFormatFlag {
		case "json":
			r = export.JSONRenderer{}
		case "text", "txt":
			r = export.TextRenderer{}
		default:
			return fmt.Errorf("unsupported format: %s (use json or text)", exportFormatFlag)
		}

		end, err := parseDay(toFlag)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		start, err := dates.Parse(fromFlag)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		bundle, err := export.NewBuilder(a.entries, a.catalog).Build(cmd.Context(), start, end)
		if err != nil {
			return err
		}

		out := exportOutFlag
		name := export.FileNameWithExtension(bundle.Start.Time, bundle.End.Time, r.Extension())
		if out == "" {
			out = name
		} else if fi, err := os.Stat(out); err == nil && fi.IsDir() {
			out = filepath.Join(out, name)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		if err := r.Render(f, bundle); err != nil {
			f.Close()
			return fmt.Errorf("failed to render export: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		log.Info().Str("file", out).Int("entries", len(bundle.Entries)).Str("export_id", bundle.ID.String()).Msg("export written")
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(bundle.Entries), out)
		return nil
	},
}

func initExportCmd() {
	exportCmd.Flags().StringVar(&fromFlag, "from", "", "First day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&toFlag, "to", "", "Last day, YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "json", "Output format: json or text")
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "Output file or directory")
	exportCmd.MarkFlagRequired("from")
}
