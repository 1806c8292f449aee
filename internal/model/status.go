package model

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// statusCycle is the order tasks advance through in the three-state lifecycle.
var statusCycle = []Status{StatusPending, StatusInProgress, StatusCompleted}

func AllStatuses() []Status {
	return append([]Status(nil), statusCycle...)
}

func (s Status) IsValid() bool {
	return s.index() >= 0
}

func (s Status) index() int {
	for i, c := range statusCycle {
		if c == s {
			return i
		}
	}
	return -1
}

// Label is the chart/display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

type Lifecycle string

const (
	LifecycleThreeState Lifecycle = "three-state"
	LifecycleTwoState   Lifecycle = "two-state"
)

func ParseLifecycle(v string) (Lifecycle, error) {
	switch Lifecycle(v) {
	case "", LifecycleThreeState:
		return LifecycleThreeState, nil
	case LifecycleTwoState:
		return LifecycleTwoState, nil
	}
	return "", fmt.Errorf("unknown lifecycle %q", v)
}

// Statuses lists the statuses this lifecycle knows about, in cycle order.
func (l Lifecycle) Statuses() []Status {
	if l == LifecycleTwoState {
		return []Status{StatusPending, StatusCompleted}
	}
	return AllStatuses()
}

func (l Lifecycle) Allows(s Status) bool {
	for _, c := range l.Statuses() {
		if c == s {
			return true
		}
	}
	return false
}

// Next is the status a task moves to when advanced without an explicit target.
func (l Lifecycle) Next(current Status) Status {
	if l == LifecycleTwoState {
		if current == StatusCompleted {
			return StatusPending
		}
		return StatusCompleted
	}
	i := current.index()
	if i < 0 {
		return StatusPending
	}
	return statusCycle[(i+1)%len(statusCycle)]
}

// Normalize maps a stored status onto one this lifecycle knows.
// The second result is false when the stored value had to be changed.
func (l Lifecycle) Normalize(s Status) (Status, bool) {
	if l.Allows(s) {
		return s, true
	}
	return StatusPending, false
}
