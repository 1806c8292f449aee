package view

import (
	"time"

	"github.com/BuzzLyutic/task-dashboard/internal/duedate"
	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

// Card is a task as the dashboard renders it.
type Card struct {
	model.Task
	Remaining     string `json:"remaining"`
	CanTransition bool   `json:"canTransition"`
}

// TransitionEnabled decides whether the status control is offered for t.
// A pending task with a due date only gets the control once that day has
// passed. This is a display rule; the state machine accepts any transition.
func TransitionEnabled(t model.Task, now time.Time) bool {
	if t.Status != model.StatusPending || t.DueDate == "" {
		return true
	}
	if _, err := duedate.Parse(t.DueDate, now.Location()); err != nil {
		return true
	}
	return duedate.Elapsed(t.DueDate, now)
}

func Cards(tasks []model.Task, now time.Time) []Card {
	out := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Card{
			Task:          t,
			Remaining:     duedate.Remaining(t.DueDate, now),
			CanTransition: TransitionEnabled(t, now),
		})
	}
	return out
}
