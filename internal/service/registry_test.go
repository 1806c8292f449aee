package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
	"github.com/BuzzLyutic/task-dashboard/internal/view"
	"github.com/BuzzLyutic/task-dashboard/internal/worker"
)

func newTestRegistry(t *testing.T, factory repo.Factory) *Registry {
	t.Helper()
	pool := worker.NewPool(zap.NewNop(), 2)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	return NewRegistry(factory, pool, model.LifecycleThreeState, zap.NewNop())
}

func TestRegistry_OneEnginePerUser(t *testing.T) {
	r := newTestRegistry(t, repo.MemoryFactory())
	ctx := context.Background()

	a := r.Engine(ctx, model.Identity{UID: "u1"})
	b := r.Engine(ctx, model.Identity{UID: "u1"})
	c := r.Engine(ctx, model.Identity{UID: "u2"})

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "u2", c.Identity().UID)
}

func TestRegistry_FirstLoadOutlivesCanceledRequest(t *testing.T) {
	remote := repo.NewMemoryStore(threeRecords()...)
	r := newTestRegistry(t, func(string) repo.DocumentStore { return remote })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := r.Engine(ctx, model.Identity{UID: "u1"})
	assert.NoError(t, e.LastError())
	assert.Equal(t, 3, view.Total(e.Stats()))
}

func TestRegistry_RetriesFailedFirstLoad(t *testing.T) {
	remote := new(MockDocumentStore)
	remote.On("ListAll", mock.Anything).Return([]repo.Document(nil), errors.New("timeout")).Once()
	remote.On("ListAll", mock.Anything).Return(mockDocs(), nil)

	r := newTestRegistry(t, func(string) repo.DocumentStore { return remote })
	id := model.Identity{UID: "u1"}

	e := r.Engine(context.Background(), id)
	assert.Equal(t, "LoadFailed", KindOf(e.LastError()))
	assert.Equal(t, 0, view.Total(e.Stats()))

	e = r.Engine(context.Background(), id)
	require.NoError(t, e.LastError())
	assert.Equal(t, 3, view.Total(e.Stats()))

	// loaded sessions are not reloaded per request
	r.Engine(context.Background(), id)
	remote.AssertNumberOfCalls(t, "ListAll", 2)
}

func TestRegistry_Sweep(t *testing.T) {
	r := newTestRegistry(t, repo.MemoryFactory())
	clock := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	ctx := context.Background()

	old := r.Engine(ctx, model.Identity{UID: "u1"})
	clock = clock.Add(20 * time.Minute)
	r.Engine(ctx, model.Identity{UID: "u2"})
	clock = clock.Add(20 * time.Minute)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	// a dropped session comes back as a fresh engine
	assert.NotSame(t, old, r.Engine(ctx, model.Identity{UID: "u1"}))
	assert.Equal(t, 0, r.Sweep(30*time.Minute))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RunStops(t *testing.T) {
	r := newTestRegistry(t, repo.MemoryFactory())

	tests := []struct {
		name string
		idle time.Duration
	}{
		{"disabled", 0},
		{"canceled", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			done := make(chan struct{})
			go func() {
				r.Run(ctx, tt.idle)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Run did not return")
			}
		})
	}
}
