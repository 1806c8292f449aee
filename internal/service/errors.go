package service

import (
	"errors"

	"github.com/BuzzLyutic/task-dashboard/internal/idmap"
)

var (
	ErrValidation = errors.New("validation error")

	ErrLoadFailed           = errors.New("load failed")
	ErrCreateFailed         = errors.New("create failed")
	ErrDeleteFailed         = errors.New("delete failed")
	ErrStatusUpdateFailed   = errors.New("status update failed")
	ErrPriorityUpdateFailed = errors.New("priority update failed")
	ErrUpdateFailed         = errors.New("update failed")
	ErrTaskNotFound         = idmap.ErrTaskNotFound
)

// kinds is checked in order; TaskNotFound wins over the operation that hit it.
var kinds = []struct {
	err  error
	name string
}{
	{ErrTaskNotFound, "TaskNotFound"},
	{ErrLoadFailed, "LoadFailed"},
	{ErrCreateFailed, "CreateFailed"},
	{ErrDeleteFailed, "DeleteFailed"},
	{ErrStatusUpdateFailed, "StatusUpdateFailed"},
	{ErrPriorityUpdateFailed, "PriorityUpdateFailed"},
	{ErrUpdateFailed, "UpdateFailed"},
}

// KindOf names the error condition reported to the dashboard.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// ErrorInfo is the last-error slot as the consumer sees it.
type ErrorInfo struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Validation bool   `json:"validation,omitempty"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{
		Kind:       KindOf(err),
		Message:    err.Error(),
		Validation: errors.Is(err, ErrValidation),
	}
}
