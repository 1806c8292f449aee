package view

import "github.com/BuzzLyutic/task-dashboard/internal/model"

// Stat is one slice of the status chart.
type Stat struct {
	Label  string       `json:"label"`
	Status model.Status `json:"status"`
	Count  int          `json:"count"`
}

type Counter interface {
	CountOf(status model.Status) int
}

// statsOrder is the fixed label order of the chart.
var statsOrder = []model.Status{model.StatusCompleted, model.StatusInProgress, model.StatusPending}

// Stats counts each partition the lifecycle knows about. All zero counts is a
// valid result.
func Stats(c Counter, lifecycle model.Lifecycle) []Stat {
	out := make([]Stat, 0, len(statsOrder))
	for _, s := range statsOrder {
		if !lifecycle.Allows(s) {
			continue
		}
		out = append(out, Stat{Label: s.Label(), Status: s, Count: c.CountOf(s)})
	}
	return out
}

func Total(stats []Stat) int {
	n := 0
	for _, s := range stats {
		n += s.Count
	}
	return n
}
