package service

import (
	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/store"
	"github.com/BuzzLyutic/task-dashboard/internal/view"
)

// State is everything the dashboard renders after a request.
type State struct {
	Identity   model.Identity               `json:"identity"`
	Lifecycle  model.Lifecycle              `json:"lifecycle"`
	Generation uint64                       `json:"generation"`
	Partitions map[model.Status][]view.Card `json:"partitions"`
	Stats      []view.Stat                  `json:"stats"`
	View       []view.Card                  `json:"view"`
	Query      view.Query                   `json:"query"`
	Error      *ErrorInfo                   `json:"error"`
}

func (e *Engine) State(q view.Query) State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	partitions := make(map[model.Status][]view.Card)
	for _, s := range e.lifecycle.Statuses() {
		partitions[s] = view.Cards(e.tasks.Partition(s), now)
	}
	return State{
		Identity:   e.identity,
		Lifecycle:  e.lifecycle,
		Generation: e.mapper.Generation(),
		Partitions: partitions,
		Stats:      view.Stats(e.tasks, e.lifecycle),
		View:       view.Cards(e.view(q), now),
		Query:      q,
		Error:      errorInfo(e.lastErr),
	}
}

// Snapshot is a copy of the task store partitions.
func (e *Engine) Snapshot() store.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tasks.Snapshot()
}

func (e *Engine) Stats() []view.Stat {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return view.Stats(e.tasks, e.lifecycle)
}

// View is the sorted, filtered list for q.
func (e *Engine) View(q view.Query) []model.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view(q)
}

func (e *Engine) view(q view.Query) []model.Task {
	if q.Partition == "" {
		return view.Apply(e.tasks.All(), q)
	}
	return view.Apply(e.tasks.Partition(q.Partition), q)
}
