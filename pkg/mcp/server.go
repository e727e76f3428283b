package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	daybook "github.com/unowned-ai/daybook/pkg"
	"github.com/unowned-ai/daybook/pkg/analytics"
	"github.com/unowned-ai/daybook/pkg/catalog"
	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/entries"
	"github.com/unowned-ai/daybook/pkg/utils"
)

// Deps are the services the tools operate on.
type Deps struct {
	Entries   *entries.Repository
	Catalog   *catalog.Catalog
	Analytics *analytics.Engine
	Defaults  Defaults
	Log       zerolog.Logger
}

// Defaults apply when a tool call leaves the argument out.
type Defaults struct {
	PageSize int
	// StreakRangeDays is the get_streaks window.
	StreakRangeDays int
}

type DaybookMCPServer struct {
	mcpServer *server.MCPServer
	store     *pkgdb.Store
	deps      Deps
	DbPath    string
}

// NewDaybookMCPServer opens and initializes the journal store at opts.Path
// (the default location when empty) and creates an MCP server around it.
func NewDaybookMCPServer(ctx context.Context, opts pkgdb.Options, defaults Defaults, log zerolog.Logger) (*DaybookMCPServer, error) {
	dbPath, err := utils.ResolveAndEnsureDBPath(opts.Path)
	if err != nil {
		return nil, err
	}
	opts.Path = dbPath

	store := pkgdb.NewStore(opts, log)
	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database '%s': %w", dbPath, err)
	}

	s := server.NewMCPServer(
		"Daybook MCP Server",
		daybook.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	repo := entries.NewRepository(store)
	return &DaybookMCPServer{
		mcpServer: s,
		store:     store,
		DbPath:    dbPath,
		deps: Deps{
			Entries:   repo,
			Catalog:   catalog.New(store),
			Analytics: analytics.NewEngine(store, repo),
			Defaults:  defaults,
			Log:       log.With().Str("component", "mcp").Logger(),
		},
	}, nil
}

// RegisterAllTools registers every daybook tool and returns their names.
func (s *DaybookMCPServer) RegisterAllTools() []string {
	return RegisterTools(s.mcpServer, s.deps)
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *DaybookMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *DaybookMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close checkpoints and closes the store.
func (s *DaybookMCPServer) Close() error {
	return s.store.Close()
}
