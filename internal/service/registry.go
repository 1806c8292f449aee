package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
)

// Registry keeps one Engine per signed-in user. Sessions idle for longer than
// the sweep timeout are dropped; the next request builds and loads them again.
type Registry struct {
	factory   repo.Factory
	queue     Queue
	lifecycle model.Lifecycle
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	engines map[string]*entry
}

type entry struct {
	engine   *Engine
	lastUsed time.Time

	loadMu sync.Mutex
	loaded bool
}

func NewRegistry(factory repo.Factory, queue Queue, lifecycle model.Lifecycle, logger *zap.Logger) *Registry {
	return &Registry{
		factory:   factory,
		queue:     queue,
		lifecycle: lifecycle,
		logger:    logger,
		now:       time.Now,
		engines:   make(map[string]*entry),
	}
}

// Engine returns the user's engine, creating it on first use. Until one load
// has succeeded every call tries again; a failure stays in the engine's error
// slot and the engine is still returned so the caller can render it.
func (r *Registry) Engine(ctx context.Context, id model.Identity) *Engine {
	r.mu.Lock()
	ent, ok := r.engines[id.UID]
	if !ok {
		ent = &entry{engine: NewEngine(r.factory(id.UID), r.queue, Options{
			Identity:  id,
			Lifecycle: r.lifecycle,
			Logger:    r.logger,
		})}
		r.engines[id.UID] = ent
		r.logger.Info("session engine created", zap.String("uid", id.UID), zap.Int("sessions", len(r.engines)))
	}
	ent.lastUsed = r.now()
	r.mu.Unlock()

	ent.loadMu.Lock()
	defer ent.loadMu.Unlock()
	if !ent.loaded {
		// the first load belongs to the session, not to the request that triggered it
		ent.loaded = ent.engine.Load(context.WithoutCancel(ctx)) == nil
	}
	return ent.engine
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Sweep drops sessions not used within idle and returns how many it dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for uid, ent := range r.engines {
		if ent.lastUsed.Before(cutoff) {
			delete(r.engines, uid)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx ends. A non-positive idle disables it.
func (r *Registry) Run(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	interval := idle / 2
	if interval <= 0 {
		interval = idle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Info("idle sessions dropped", zap.Int("dropped", n), zap.Int("sessions", r.Len()))
			}
		}
	}
}
