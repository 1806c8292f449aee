package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/testutil"
)

// storeContract exercises the DocumentStore behaviour every backend must share.
func storeContract(t *testing.T, open func(owner string) DocumentStore) {
	ctx := context.Background()

	t.Run("list preserves insertion order", func(t *testing.T) {
		s := open("order")
		var handles []string
		for _, title := range []string{"first", "second", "third"} {
			h, err := s.Create(ctx, model.Record{Title: title, Status: model.StatusPending, Priority: model.PriorityLow})
			require.NoError(t, err)
			handles = append(handles, h)
		}

		docs, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, d := range docs {
			assert.Equal(t, handles[i], d.Handle)
		}
		assert.Equal(t, "second", docs[1].Record.Title)
	})

	t.Run("create persists the full record", func(t *testing.T) {
		s := open("full")
		rec := model.Record{
			Title:       "Bug Fixing",
			Description: "Resolve bugs in the login module.",
			DueDate:     "2025-01-05",
			Status:      model.StatusPending,
			Priority:    model.PriorityHigh,
			Category:    model.CategoryWork,
		}
		h, err := s.Create(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, h)

		docs, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, rec, docs[0].Record)
	})

	t.Run("update applies only given fields", func(t *testing.T) {
		s := open("update")
		h, err := s.Create(ctx, model.Record{Title: "t", Description: "d", Status: model.StatusPending, Priority: model.PriorityMedium})
		require.NoError(t, err)

		status := model.StatusCompleted
		require.NoError(t, s.Update(ctx, h, model.Fields{Status: &status}))

		docs, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, docs[0].Record.Status)
		assert.Equal(t, "d", docs[0].Record.Description)
		assert.Equal(t, model.PriorityMedium, docs[0].Record.Priority)
	})

	t.Run("unknown handle", func(t *testing.T) {
		s := open("missing")
		status := model.StatusCompleted
		missing := "00000000-0000-0000-0000-000000000000"
		assert.ErrorIs(t, s.Update(ctx, missing, model.Fields{Status: &status}), ErrorNotFound)
		assert.ErrorIs(t, s.Delete(ctx, missing), ErrorNotFound)
	})

	t.Run("delete removes and owners are isolated", func(t *testing.T) {
		a, b := open("alice"), open("bob")
		h, err := a.Create(ctx, model.Record{Title: "mine", Status: model.StatusPending, Priority: model.PriorityLow})
		require.NoError(t, err)

		assert.ErrorIs(t, b.Delete(ctx, h), ErrorNotFound)
		docs, err := b.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		require.NoError(t, a.Delete(ctx, h))
		docs, err = a.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, MemoryFactory())
}

func TestSQLiteStore(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	defer db.Close()

	storeContract(t, db.Factory())
}

func TestPostgresStore(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	testutil.TruncateTables(t, pool)
	storeContract(t, PostgresFactory(pool))

	t.Run("lists rows written outside the store in seq order", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		handles := testutil.SeedDocuments(t, pool, "seeded",
			model.Record{Title: "Complete Project Report", DueDate: "2025-02-10", Status: model.StatusPending, Priority: model.PriorityHigh},
			model.Record{Title: "Team Meeting", DueDate: "2024-12-15", Status: model.StatusInProgress, Priority: model.PriorityMedium},
		)

		docs, err := PostgresFactory(pool)("seeded").ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, handles[0], docs[0].Handle)
		assert.Equal(t, handles[1], docs[1].Handle)
		assert.Equal(t, model.StatusInProgress, docs[1].Record.Status)
	})

	t.Run("migrations round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.SeedDocuments(t, pool, "round-trip", model.Record{Title: "gone", Status: model.StatusPending, Priority: model.PriorityLow})

		require.NoError(t, testutil.Migrate(ctx, pool, testutil.MigrateDown))
		_, err := PostgresFactory(pool)("round-trip").ListAll(ctx)
		assert.Error(t, err)

		require.NoError(t, testutil.Migrate(ctx, pool, testutil.MigrateUp))
		docs, err := PostgresFactory(pool)("round-trip").ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryStore_Seed(t *testing.T) {
	s := NewMemoryStore(model.Record{Title: "a"}, model.Record{Title: "b"})
	docs, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.NotEqual(t, docs[0].Handle, docs[1].Handle)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
