package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	daybook "github.com/unowned-ai/daybook/pkg"
	"github.com/unowned-ai/daybook/pkg/config"
	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/logger"
)

var (
	dbPath   string
	walMode  bool
	syncMode string
	logLevel string

	// Resolved in PersistentPreRunE: environment first, then explicit flags.
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "daybook",
	Short:   "A private daily journal with moods, tags and streaks.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", daybook.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.New()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("db") {
			c.DBPath = dbPath
		}
		if flags.Changed("wal") {
			c.WAL = walMode
		}
		if flags.Changed("sync") {
			c.Sync = syncMode
		}
		if flags.Changed("log-level") {
			c.LogLevel = logLevel
		}
		if err := c.ResolveDefaults(); err != nil {
			return err
		}
		cfg = c
		log = logger.NewWithWriter(os.Stderr, "daybook", c.LogLevel, c.PrettyLogs())
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for daybook.

The command prints a completion script to stdout. Source it in your shell or
install it where your shell looks for completions.

Examples:

  Bash (current shell):
    $ source <(daybook completion bash)

  Zsh:
    $ daybook completion zsh > "${fpath[1]}/_daybook"

  Fish:
    $ daybook completion fish > ~/.config/fish/completions/daybook.fish

  PowerShell:
    PS> daybook completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of daybook",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), daybook.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the daybook database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Bring the journal database to the current schema",
	Long: `Opens the SQLite database (the --db flag, DAYBOOK_DB_PATH, or the default
location), applies any pending schema and column migrations for the journaldb
component, and seeds the mood and tag catalogs. A database created by a newer
daybook is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dbConn, err := a.store.DB()
		if err != nil {
			return err
		}
		version, err := pkgdb.GetComponentSchemaVersion(cmd.Context(), dbConn, pkgdb.JournalDBComponent)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at %s schema version %d (WAL: %t, Sync: %s)\n",
			a.path, pkgdb.JournalDBComponent, version, cfg.WAL, cfg.Sync)
		return nil
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: DAYBOOK_DB_PATH or a system-specific location)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initEntriesCmd()
	initTagsCmd()
	initMoodsCmd()
	initSearchCmd()
	initStatsCmd()
	initUserCmd()
	initExportCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, entriesCmd, tagsCmd, moodsCmd, searchCmd, statsCmd, userCmd, exportCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
