package idmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
)

func docs(handles ...string) []repo.Document {
	out := make([]repo.Document, 0, len(handles))
	for _, h := range handles {
		out = append(out, repo.Document{Handle: h, Record: model.Record{Title: "task " + h, Status: model.StatusPending}})
	}
	return out
}

func TestRebuild_AssignsIDsInListingOrder(t *testing.T) {
	m, tasks := Rebuild(docs("c", "a", "b"), 4)

	require.Len(t, tasks, 3)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, uint64(4), m.Generation())
	for i, want := range []string{"c", "a", "b"} {
		assert.Equal(t, i+1, tasks[i].ID)
		assert.Equal(t, want, tasks[i].Handle)
		assert.Equal(t, "task "+want, tasks[i].Title)

		h, err := m.Resolve(i+1, 4)
		require.NoError(t, err)
		assert.Equal(t, want, h)
	}
}

func TestMapper_Resolve_Missing(t *testing.T) {
	m, _ := Rebuild(docs("a", "b"), 1)

	tests := []struct {
		name string
		id   int
		gen  uint64
	}{
		{"zero", 0, 1},
		{"negative", -1, 1},
		{"past the end", 3, 1},
		{"older load", 1, 0},
		{"newer load", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Resolve(tt.id, tt.gen)
			assert.ErrorIs(t, err, ErrTaskNotFound)
		})
	}
}

func TestMapper_StaleAfterRebuild(t *testing.T) {
	before, _ := Rebuild(docs("a", "b", "c"), 1)
	after, _ := Rebuild(docs("b", "c"), 2)

	h, err := before.Resolve(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", h)

	// id 2 now names "c"; an id from load 1 must not reach it
	_, err = after.Resolve(2, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	h, err = after.Resolve(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "c", h)
}

func TestEmpty(t *testing.T) {
	m := Empty()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, uint64(0), m.Generation())
	_, err := m.Resolve(1, 0)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
