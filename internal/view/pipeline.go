// Package view derives read-only projections of the task store: the
// filtered/sorted list, chart statistics and per-task display cards.
package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-dashboard/internal/duedate"
	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func ParseOrder(v string) (Order, error) {
	switch Order(strings.ToLower(v)) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", v)
}

// Query selects what the list view shows. An empty Partition means all tasks.
type Query struct {
	Partition model.Status `json:"partition,omitempty"`
	Text      string       `json:"q,omitempty"`
	Order     Order        `json:"order"`
}

// Apply sorts tasks by due date and then filters them by Text. Filtering runs
// after sorting so the result keeps the sort order.
func Apply(tasks []model.Task, q Query) []model.Task {
	return Filter(Sort(tasks, q.Order), q.Text)
}

// Sort returns a stably sorted copy ordered by due date. Tasks without a
// parseable due date go last in either order.
func Sort(tasks []model.Task, order Order) []model.Task {
	type keyed struct {
		task model.Task
		due  time.Time
		ok   bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		d, err := duedate.Parse(t.DueDate, time.UTC)
		ks[i] = keyed{task: t, due: d, ok: t.DueDate != "" && err == nil}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case !a.ok && !b.ok:
			return 0
		case !a.ok:
			return 1
		case !b.ok:
			return -1
		}
		c := a.due.Compare(b.due)
		if order == OrderDesc {
			return -c
		}
		return c
	})

	out := make([]model.Task, len(ks))
	for i, k := range ks {
		out[i] = k.task
	}
	return out
}

// Filter keeps tasks whose title or description contains text, ignoring case.
func Filter(tasks []model.Task, text string) []model.Task {
	needle := strings.ToLower(text)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, t)
		}
	}
	return out
}
