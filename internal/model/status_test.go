package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle_Next(t *testing.T) {
	tests := []struct {
		name      string
		lifecycle Lifecycle
		current   Status
		want      Status
	}{
		{"three-state pending", LifecycleThreeState, StatusPending, StatusInProgress},
		{"three-state in progress", LifecycleThreeState, StatusInProgress, StatusCompleted},
		{"three-state completed wraps", LifecycleThreeState, StatusCompleted, StatusPending},
		{"three-state unknown restarts", LifecycleThreeState, Status("archived"), StatusPending},
		{"two-state pending", LifecycleTwoState, StatusPending, StatusCompleted},
		{"two-state completed", LifecycleTwoState, StatusCompleted, StatusPending},
		{"two-state in progress completes", LifecycleTwoState, StatusInProgress, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lifecycle.Next(tt.current))
		})
	}
}

func TestLifecycle_NextThreeTimesReturnsToStart(t *testing.T) {
	l := LifecycleThreeState
	for _, s := range AllStatuses() {
		assert.Equal(t, s, l.Next(l.Next(l.Next(s))), "cycle from %s", s)
	}
}

func TestLifecycle_TwoStateToggleIsInvolution(t *testing.T) {
	l := LifecycleTwoState
	for _, s := range l.Statuses() {
		assert.Equal(t, s, l.Next(l.Next(s)))
	}
}

func TestLifecycle_Normalize(t *testing.T) {
	s, ok := LifecycleTwoState.Normalize(StatusInProgress)
	assert.False(t, ok)
	assert.Equal(t, StatusPending, s)

	s, ok = LifecycleThreeState.Normalize(StatusInProgress)
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	s, ok = LifecycleThreeState.Normalize(Status("done"))
	assert.False(t, ok)
	assert.Equal(t, StatusPending, s)
}

func TestParseLifecycle(t *testing.T) {
	l, err := ParseLifecycle("")
	assert.NoError(t, err)
	assert.Equal(t, LifecycleThreeState, l)

	l, err = ParseLifecycle("two-state")
	assert.NoError(t, err)
	assert.Equal(t, LifecycleTwoState, l)

	_, err = ParseLifecycle("four-state")
	assert.Error(t, err)
}

func TestFields_Apply(t *testing.T) {
	title := "Updated"
	prio := PriorityHigh
	r := Fields{Title: &title, Priority: &prio}.Apply(Record{
		Title:       "Original",
		Description: "kept",
		Status:      StatusPending,
		Priority:    PriorityLow,
	})

	assert.Equal(t, Record{
		Title:       "Updated",
		Description: "kept",
		Status:      StatusPending,
		Priority:    PriorityHigh,
	}, r)
	assert.True(t, Fields{}.IsEmpty())
	assert.False(t, Fields{Title: &title}.IsEmpty())
}
