package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/vocab"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(Options{Path: filepath.Join(t.TempDir(), "journal.db"), WAL: true, Sync: "NORMAL"}, zerolog.Nop())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreNotInitialized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var n int
	assert.ErrorIs(t, s.Get(ctx, &n, `SELECT 1`), ErrNotInitialized)
	assert.ErrorIs(t, s.Select(ctx, &[]int{}, `SELECT 1`), ErrNotInitialized)
	_, err := s.Exec(ctx, `SELECT 1`)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.DB()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, s.Initialized())
}

func TestStoreInitializeSeeds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	var moods int
	require.NoError(t, s.Get(ctx, &moods, `SELECT COUNT(*) FROM moods`))
	assert.Equal(t, len(vocab.AllMoods()), moods)

	var tags int
	require.NoError(t, s.Get(ctx, &tags, `SELECT COUNT(*) FROM tags WHERE is_prebuilt`))
	assert.Equal(t, len(vocab.PrebuiltTags()), tags)

	var happy string
	require.NoError(t, s.Get(ctx, &happy, `SELECT name FROM moods WHERE id = ?`, int(vocab.Happy)))
	assert.Equal(t, "Happy", happy)
}

func TestStoreInitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		s := NewStore(Options{Path: path, WAL: true, Sync: "FULL"}, zerolog.Nop())
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Initialize(ctx))

		var moods, tags int
		require.NoError(t, s.Get(ctx, &moods, `SELECT COUNT(*) FROM moods`))
		require.NoError(t, s.Get(ctx, &tags, `SELECT COUNT(*) FROM tags`))
		assert.Equal(t, 15, moods)
		assert.Equal(t, 31, tags)
		require.NoError(t, s.Close())
	}
}

func TestStoreConcurrentInitialize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Initialize(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), s.initRuns.Load())
	assert.True(t, s.Initialized())
}

func TestStoreForeignKeysEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	_, err := s.Exec(ctx, `INSERT INTO entry_tags (entry_id, tag_id) VALUES (999, 999)`)
	assert.Error(t, err)
}

func TestStoreInMemory(t *testing.T) {
	s := NewStore(Options{Path: ":memory:"}, zerolog.Nop())
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	var n int
	require.NoError(t, s.Get(ctx, &n, `SELECT COUNT(*) FROM moods`))
	assert.Equal(t, 15, n)
}

func TestStoreInExpandsSlices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	q, args, err := s.In(`SELECT name FROM moods WHERE id IN (?) ORDER BY id`, []int{1, 2})
	require.NoError(t, err)
	var names []string
	require.NoError(t, s.Select(ctx, &names, q, args...))
	assert.Equal(t, []string{"Happy", "Excited"}, names)
}

func TestStoreCloseAndReinitialize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	first, err := s.DB()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := s.DB()
			if err != nil {
				assert.ErrorIs(t, err, ErrNotInitialized)
				return
			}
			assert.NotNil(t, conn)
		}()
	}
	require.NoError(t, s.Close())
	wg.Wait()

	_, err = s.DB()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, s.Initialized())
	require.NoError(t, s.Close())

	require.NoError(t, s.Initialize(ctx))
	second, err := s.DB()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), s.initRuns.Load())

	var moods int
	require.NoError(t, s.Get(ctx, &moods, `SELECT COUNT(*) FROM moods`))
	assert.Equal(t, 15, moods)
}
