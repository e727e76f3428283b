package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the code supports for the journaldb component.
	// Version 2 added the category columns on tags and journal_entries.
	TargetSchemaVersion int64 = 2
	// JournalDBComponent is the name for the main journal database component.
	JournalDBComponent = "journaldb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(ctx context.Context, db sqlx.QueryerContext, componentName string) (int64, error) {
	var version int64
	err := sqlx.GetContext(ctx, db, &version, `SELECT version FROM daybook_versions WHERE component = ?;`, componentName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "daybook_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

func setComponentSchemaVersion(ctx context.Context, db sqlx.ExecerContext, componentName string, version int64) error {
	insertVersionSQL := `
INSERT INTO daybook_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := db.ExecContext(ctx, insertVersionSQL, componentName, version); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", componentName, version, err)
	}
	return nil
}

// columnExists reports whether table already has column, using PRAGMA table_info.
func columnExists(ctx context.Context, db sqlx.QueryerContext, table, column string) (bool, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return false, fmt.Errorf("failed to scan column info of %s: %w", table, err)
		}
		name, _ := row["name"].(string)
		if b, ok := row["name"].([]byte); ok {
			name = string(b)
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func addColumnIfMissing(ctx context.Context, db *sqlx.DB, m columnMigration) (bool, error) {
	exists, err := columnExists(ctx, db, m.Table, m.Column)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Definition)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return false, fmt.Errorf("failed to add column %s.%s: %w", m.Table, m.Column, err)
	}
	return true, nil
}

// UpgradeDB brings the journaldb component of db to appTargetSchemaVersion.
// Table creation and column additions are idempotent, so an older or
// unversioned database is migrated in place. A database recorded at a newer
// version than the application supports is refused.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(ctx context.Context, db *sqlx.DB, dbIdentifierForLog string, appTargetSchemaVersion int64, log zerolog.Logger) error {
	currentDBVersion, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		return err
	}

	if currentDBVersion > appTargetSchemaVersion {
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", JournalDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}

	if _, err := db.ExecContext(ctx, SchemaV2); err != nil {
		return fmt.Errorf("failed to execute schema SQL on '%s': %w", dbIdentifierForLog, err)
	}

	for _, m := range columnMigrations {
		added, err := addColumnIfMissing(ctx, db, m)
		if err != nil {
			return err
		}
		if added {
			log.Info().Str("table", m.Table).Str("column", m.Column).Msg("added column")
		}
	}

	if currentDBVersion == appTargetSchemaVersion {
		log.Debug().Str("db", dbIdentifierForLog).Int64("version", currentDBVersion).Msg("schema up to date")
		return nil
	}

	if err := setComponentSchemaVersion(ctx, db, JournalDBComponent, appTargetSchemaVersion); err != nil {
		return err
	}
	log.Info().
		Str("db", dbIdentifierForLog).
		Int64("from", currentDBVersion).
		Int64("to", appTargetSchemaVersion).
		Msg("schema upgraded")
	return nil
}
