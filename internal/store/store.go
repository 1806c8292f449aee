// Package store holds the authoritative in-memory copy of a user's tasks,
// partitioned by status. It is only ever replaced wholesale.
package store

import (
	"sync"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

type Store struct {
	mu         sync.RWMutex
	all        []model.Task
	partitions map[model.Status][]model.Task
}

func New() *Store {
	return &Store{partitions: emptyPartitions()}
}

func emptyPartitions() map[model.Status][]model.Task {
	p := make(map[model.Status][]model.Task, 3)
	for _, s := range model.AllStatuses() {
		p[s] = []model.Task{}
	}
	return p
}

// ReplaceAll swaps in a fresh load. Tasks keep their relative order within
// each partition. Tasks whose status is not a known status are dropped; callers
// normalize statuses before handing them over.
func (s *Store) ReplaceAll(tasks []model.Task) {
	all := make([]model.Task, 0, len(tasks))
	partitions := emptyPartitions()
	for _, t := range tasks {
		if _, ok := partitions[t.Status]; !ok {
			continue
		}
		all = append(all, t)
		partitions[t.Status] = append(partitions[t.Status], t)
	}

	s.mu.Lock()
	s.all = all
	s.partitions = partitions
	s.mu.Unlock()
}

// Get finds a task by handle in the current load.
func (s *Store) Get(handle string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.all {
		if t.Handle == handle {
			return t, true
		}
	}
	return model.Task{}, false
}

// Partition returns a copy of the tasks with the given status.
func (s *Store) Partition(status model.Status) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task{}, s.partitions[status]...)
}

func (s *Store) CountOf(status model.Status) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partitions[status])
}

// All returns every task in listing order.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task{}, s.all...)
}

func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

// Snapshot is a point-in-time copy of every partition.
type Snapshot map[model.Status][]model.Task

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.partitions))
	for status, tasks := range s.partitions {
		snap[status] = append([]model.Task{}, tasks...)
	}
	return snap
}
