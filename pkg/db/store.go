package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Options configure how a Store opens its database file.
type Options struct {
	// Path is the SQLite file or DSN. ":memory:" is accepted.
	Path string
	WAL  bool
	// Sync is the synchronous pragma. Empty keeps the SQLite default.
	Sync string
}

// Store owns the journal database connection. It must be initialized once
// before any data operation; until then every accessor returns ErrNotInitialized.
type Store struct {
	opts Options
	log  zerolog.Logger

	// mu serializes Initialize and Close. db is nil until Initialize succeeds
	// and again after Close.
	mu sync.Mutex
	db atomic.Pointer[sqlx.DB]

	// initRuns counts executions of the initialization body.
	initRuns atomic.Int32
}

func NewStore(opts Options, log zerolog.Logger) *Store {
	return &Store{
		opts: opts,
		log:  log.With().Str("component", "store").Logger(),
	}
}

// Initialize opens the database, applies the schema and column migrations,
// seeds moods and prebuilt tags, and backfills categories. Concurrent and
// repeated calls run the body at most once successfully.
func (s *Store) Initialize(ctx context.Context) error {
	if s.db.Load() != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.Load() != nil {
		return nil
	}
	s.initRuns.Add(1)

	conn, err := OpenDBConnection(s.opts.Path, s.opts.WAL, s.opts.Sync)
	if err != nil {
		return err
	}
	if err := s.bootstrap(ctx, conn); err != nil {
		conn.Close()
		return errors.Wrapf(err, "initialize %s", s.opts.Path)
	}

	s.db.Store(conn)
	return nil
}

func (s *Store) bootstrap(ctx context.Context, conn *sqlx.DB) error {
	if err := UpgradeDB(ctx, conn, s.opts.Path, TargetSchemaVersion, s.log); err != nil {
		return err
	}

	moods, err := seedMoods(ctx, conn)
	if err != nil {
		return err
	}
	tags, err := seedTags(ctx, conn)
	if err != nil {
		return err
	}
	tagCats, err := backfillTagCategories(ctx, conn)
	if err != nil {
		return err
	}
	entryCats, err := backfillEntryCategories(ctx, conn)
	if err != nil {
		return err
	}

	s.log.Debug().
		Int("moods_seeded", moods).
		Int("tags_seeded", tags).
		Int("tag_categories_backfilled", tagCats).
		Int64("entry_categories_backfilled", entryCats).
		Msg("store initialized")
	return nil
}

// Initialized reports whether Initialize has completed.
func (s *Store) Initialized() bool {
	return s.db.Load() != nil
}

// DB exposes the underlying connection.
func (s *Store) DB() (*sqlx.DB, error) {
	conn := s.db.Load()
	if conn == nil {
		return nil, ErrNotInitialized
	}
	return conn, nil
}

func (s *Store) Logger() zerolog.Logger {
	return s.log
}

func (s *Store) Select(ctx context.Context, dest any, query string, args ...any) error {
	conn, err := s.DB()
	if err != nil {
		return err
	}
	return conn.SelectContext(ctx, dest, query, args...)
}

func (s *Store) Get(ctx context.Context, dest any, query string, args ...any) error {
	conn, err := s.DB()
	if err != nil {
		return err
	}
	return conn.GetContext(ctx, dest, query, args...)
}

func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := s.DB()
	if err != nil {
		return nil, err
	}
	return conn.ExecContext(ctx, query, args...)
}

// In expands slice arguments of query into placeholders.
func (s *Store) In(query string, args ...any) (string, []any, error) {
	conn, err := s.DB()
	if err != nil {
		return "", nil, err
	}
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return conn.Rebind(q), a, nil
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	conn, err := s.DB()
	if err != nil {
		return err
	}
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close checkpoints the WAL and closes the connection. The Store can be
// initialized again afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.db.Swap(nil)
	if conn == nil {
		return nil
	}
	if s.opts.WAL {
		if _, err := conn.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
			s.log.Warn().Err(err).Msg("wal checkpoint failed")
		}
	}
	return conn.Close()
}
