// Package idmap associates positional display ids with remote store handles.
//
// Display ids are reassigned 1..N in listing order on every reload, so an id
// is only meaningful together with the generation of the load that produced
// it. Handles are stable and are what mutations key on.
package idmap

import (
	"errors"
	"fmt"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
)

var ErrTaskNotFound = errors.New("task not found")

type Mapper struct {
	gen     uint64
	handles []string // handles[id-1]
}

// Rebuild maps the listing of load gen in the order the store returned it and
// converts each document into a Task tagged with its id and handle.
func Rebuild(docs []repo.Document, gen uint64) (*Mapper, []model.Task) {
	m := &Mapper{
		gen:     gen,
		handles: make([]string, 0, len(docs)),
	}
	tasks := make([]model.Task, 0, len(docs))
	for i, d := range docs {
		id := i + 1
		m.handles = append(m.handles, d.Handle)
		tasks = append(tasks, model.Task{
			Handle:      d.Handle,
			ID:          id,
			Title:       d.Record.Title,
			Description: d.Record.Description,
			DueDate:     d.Record.DueDate,
			Status:      d.Record.Status,
			Priority:    d.Record.Priority,
			Category:    d.Record.Category,
		})
	}
	return m, tasks
}

// Empty is the mapper before the first load.
func Empty() *Mapper {
	m, _ := Rebuild(nil, 0)
	return m
}

// Generation is the load the ids of this mapper belong to.
func (m *Mapper) Generation() uint64 {
	return m.gen
}

// Resolve maps a display id handed out by load gen. An id from any other load
// is not found, even if the same number exists now.
func (m *Mapper) Resolve(localID int, gen uint64) (string, error) {
	if gen != m.gen {
		return "", fmt.Errorf("%w: id %d is from load %d, current load is %d", ErrTaskNotFound, localID, gen, m.gen)
	}
	if localID < 1 || localID > len(m.handles) {
		return "", fmt.Errorf("%w: id %d", ErrTaskNotFound, localID)
	}
	return m.handles[localID-1], nil
}

func (m *Mapper) Len() int {
	return len(m.handles)
}
