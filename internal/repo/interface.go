package repo

import (
	"context"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

// Document is one stored record together with its opaque handle.
type Document struct {
	Handle string
	Record model.Record
}

// DocumentStore is the remote document store, scoped to a single owner.
// ListAll returns documents in a stable iteration order (insertion order).
type DocumentStore interface {
	ListAll(ctx context.Context) ([]Document, error)
	Create(ctx context.Context, r model.Record) (string, error)
	Delete(ctx context.Context, handle string) error
	Update(ctx context.Context, handle string, f model.Fields) error
}

// Factory opens the document store for one owner (the signed-in user's uid).
type Factory func(owner string) DocumentStore
