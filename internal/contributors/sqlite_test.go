package contributors

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_PutGetList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := Key{Repo: "tidb", Version: "v7.1", Locale: "en", FilePath: "overview.md"}
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Put(ctx, Record{Key: key, Count: 2, Authors: []string{"a@x", "b@x"}, UpdatedAt: when}))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []string{"a@x", "b@x"}, got.Authors)
	assert.Equal(t, when, got.UpdatedAt)

	// Upsert replaces.
	require.NoError(t, store.Put(ctx, Record{Key: key, Count: 3, Authors: []string{"a@x", "b@x", "c@x"}, UpdatedAt: when}))
	require.NoError(t, store.Put(ctx, Record{Key: Key{Repo: "tidb", Version: "v5.0", Locale: "en", FilePath: "overview.md"}, UpdatedAt: when}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "v5.0", all[0].Version)
	assert.Empty(t, all[0].Authors)
	assert.Equal(t, 3, all[1].Count)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	_, err := newTestStore(t).Get(context.Background(), Key{Repo: "tidb", FilePath: "nope.md"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrNoRecord))
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestQueries_PostgresPlaceholders(t *testing.T) {
	q := newQueries(sq.Dollar)
	query, args, err := q.get(Key{Repo: "tidb", Version: "v7.1", Locale: "en", FilePath: "a.md"})
	require.NoError(t, err)
	assert.Contains(t, query, "$1")
	assert.NotContains(t, query, "?")
	assert.Len(t, args, 4)
}
