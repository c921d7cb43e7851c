package store_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/condeval/pkg/condeval/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) store.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		saved, err := s.Save(store.Record{ID: "id-1", Name: "positive", Sexp: "(> $0 0)"})
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Version)
		assert.False(t, saved.UpdatedAt.IsZero())

		loaded, err := s.Load("positive")
		require.NoError(t, err)
		assert.Equal(t, "id-1", loaded.ID)
		assert.Equal(t, "positive", loaded.Name)
		assert.Equal(t, "(> $0 0)", loaded.Sexp)
		assert.Equal(t, 1, loaded.Version)
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Load("missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Save_EmptyName", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Save(store.Record{Sexp: "true"})
		assert.ErrorIs(t, err, store.ErrEmptyName)
	})

	t.Run(name+"/Save_Overwrite_BumpsVersion", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Save(store.Record{ID: "a", Name: "rule", Sexp: "true"})
		require.NoError(t, err)
		saved, err := s.Save(store.Record{ID: "b", Name: "rule", Sexp: "false"})
		require.NoError(t, err)
		assert.Equal(t, 2, saved.Version)

		loaded, err := s.Load("rule")
		require.NoError(t, err)
		assert.Equal(t, "b", loaded.ID)
		assert.Equal(t, "false", loaded.Sexp)
		assert.Equal(t, 2, loaded.Version)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		records, err := s.List()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run(name+"/List_OrderedByName", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		for _, n := range []string{"charlie", "alpha", "bravo"} {
			_, err := s.Save(store.Record{ID: n, Name: n, Sexp: "true"})
			require.NoError(t, err)
		}

		records, err := s.List()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "alpha", records[0].Name)
		assert.Equal(t, "bravo", records[1].Name)
		assert.Equal(t, "charlie", records[2].Name)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Save(store.Record{ID: "x", Name: "rule", Sexp: "true"})
		require.NoError(t, err)
		require.NoError(t, s.Delete("rule"))

		_, err = s.Load("rule")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// deleting again is not an error
		assert.NoError(t, s.Delete("rule"))
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		s := factory(t)
		require.NoError(t, s.Close())

		_, err := s.Save(store.Record{Name: "rule", Sexp: "true"})
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		_, err = s.Load("rule")
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		_, err = s.List()
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		assert.ErrorIs(t, s.Delete("rule"), store.ErrStoreClosed)
		assert.NoError(t, s.Close(), "double close is safe")
	})

	t.Run(name+"/Concurrent", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Save(store.Record{ID: "id", Name: "shared", Sexp: "true"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		loaded, err := s.Load("shared")
		require.NoError(t, err)
		assert.Equal(t, 10, loaded.Version)
	})
}

func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	}
	storeContractTest(t, "MemoryStore", factory)
}

func TestSQLiteStore(t *testing.T) {
	factory := func(t *testing.T) store.Store {
		s, err := store.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return s
	}
	storeContractTest(t, "SQLiteStore", factory)
}

func TestCachedStore(t *testing.T) {
	factory := func(t *testing.T) store.Store {
		s, err := store.NewCachedStore(store.NewMemoryStore(), 2)
		require.NoError(t, err)
		return s
	}
	storeContractTest(t, "CachedStore", factory)
}

func TestCachedStore_ReadThroughAndEviction(t *testing.T) {
	inner := store.NewMemoryStore()
	_, err := inner.Save(store.Record{Name: "warm", Sexp: "true"})
	require.NoError(t, err)

	s, err := store.NewCachedStore(inner, 2)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Cached("warm"))
	rec, err := s.Load("warm")
	require.NoError(t, err)
	assert.Equal(t, "true", rec.Sexp)
	assert.True(t, s.Cached("warm"))

	_, err = s.Save(store.Record{Name: "a", Sexp: "false"})
	require.NoError(t, err)
	_, err = s.Save(store.Record{Name: "b", Sexp: "false"})
	require.NoError(t, err)
	assert.False(t, s.Cached("warm"))

	// Evicted records are still served from the inner store.
	rec, err = s.Load("warm")
	require.NoError(t, err)
	assert.Equal(t, "true", rec.Sexp)

	require.NoError(t, s.Delete("a"))
	assert.False(t, s.Cached("a"))
	_, err = s.Load("a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNewCachedStore_InvalidSize(t *testing.T) {
	_, err := store.NewCachedStore(store.NewMemoryStore(), 0)
	assert.Error(t, err)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conditions.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.Save(store.Record{ID: "id-1", Name: "rule", Sexp: "(and true false)"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load("rule")
	require.NoError(t, err)
	assert.Equal(t, "(and true false)", loaded.Sexp)
	assert.Equal(t, 1, loaded.Version)
}

func TestMemoryStore_Len(t *testing.T) {
	s := store.NewMemoryStore()
	assert.Equal(t, 0, s.Len())

	_, err := s.Save(store.Record{Name: "a", Sexp: "true"})
	require.NoError(t, err)
	_, err = s.Save(store.Record{Name: "a", Sexp: "false"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}
