package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Daybook MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the journal's entries,
tags, moods, search and statistics as MCP tools via STDIO.

The --db flag is optional. Without it DAYBOOK_DB_PATH or a system-specific
default location is used:
- Windows: %USERPROFILE%\AppData\Roaming\daybook\daybook.db
- macOS: ~/Library/Application Support/daybook/daybook.db
- Linux: $XDG_DATA_HOME/daybook/daybook.db (~/.local/share by default)

Example:
  daybook mcp
  daybook mcp --db journal.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewDaybookMCPServer(cmd.Context(),
			pkgdb.Options{Path: cfg.DBPath, WAL: cfg.WAL, Sync: cfg.Sync},
			mcp.Defaults{PageSize: cfg.PageSize, StreakRangeDays: cfg.StreakRangeDays}, log)
		if err != nil {
			return err
		}
		defer srv.Close()

		tools := srv.RegisterAllTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Daybook MCP server started. DB: %s (WAL: %t, Sync: %s)\n", srv.DbPath, cfg.WAL, cfg.Sync)
		fmt.Fprintf(os.Stderr, "Available tools: %s\n", strings.Join(tools, ", "))
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
