package repo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

// MemoryStore is a process-local DocumentStore, used for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

var _ DocumentStore = (*MemoryStore)(nil)

func NewMemoryStore(seed ...model.Record) *MemoryStore {
	s := &MemoryStore{}
	for _, r := range seed {
		s.docs = append(s.docs, Document{Handle: uuid.NewString(), Record: r})
	}
	return s
}

// MemoryFactory hands out one MemoryStore per owner, created on first use.
func MemoryFactory() Factory {
	var (
		mu     sync.Mutex
		stores = map[string]*MemoryStore{}
	)
	return func(owner string) DocumentStore {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[owner]
		if !ok {
			s = NewMemoryStore()
			stores[owner] = s
		}
		return s
	}
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Document, 0, len(s.docs)), s.docs...), nil
}

func (s *MemoryStore) Create(ctx context.Context, r model.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := uuid.NewString()
	s.docs = append(s.docs, Document{Handle: handle, Record: r})
	return handle, nil
}

func (s *MemoryStore) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(handle)
	if i < 0 {
		return ErrorNotFound
	}
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, handle string, f model.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(handle)
	if i < 0 {
		return ErrorNotFound
	}
	s.docs[i].Record = f.Apply(s.docs[i].Record)
	return nil
}

func (s *MemoryStore) indexOf(handle string) int {
	for i, d := range s.docs {
		if d.Handle == handle {
			return i
		}
	}
	return -1
}
