package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true, // SQLite also supports EXTRA
}

// busyTimeoutMillis is how long a connection waits on a locked database file.
const busyTimeoutMillis = 5000

// OpenDBConnection establishes a connection to a SQLite database with specified options.
// baseDSN is the initial data source name (e.g., file path).
// enableWAL sets the journal_mode to WAL if true.
// syncPragma sets the synchronous pragma (e.g., "OFF", "NORMAL", "FULL", "EXTRA").
// Foreign keys are enabled through the DSN so every pooled connection enforces them.
func OpenDBConnection(baseDSN string, enableWAL bool, syncPragma string) (*sqlx.DB, error) {
	params := url.Values{}

	if enableWAL {
		params.Add("_journal_mode", "WAL")
	}

	if syncPragma != "" {
		ucSyncPragma := strings.ToUpper(syncPragma)
		if !validSyncModes[ucSyncPragma] {
			return nil, fmt.Errorf("%w: invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", ErrInvalidArgument, syncPragma)
		}
		params.Add("_synchronous", ucSyncPragma)
	}

	params.Add("_foreign_keys", "on")
	params.Add("_busy_timeout", fmt.Sprint(busyTimeoutMillis))

	constructedDSN := baseDSN
	if strings.Contains(baseDSN, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	db, err := sqlx.Open("sqlite3", constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}

	// Each connection to ":memory:" is its own database.
	if isMemoryDSN(baseDSN) {
		db.SetMaxOpenConns(1)
	}

	// Ping the database to ensure the connection is alive and the DSN is valid.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
