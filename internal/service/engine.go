package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/duedate"
	"github.com/BuzzLyutic/task-dashboard/internal/idmap"
	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
	"github.com/BuzzLyutic/task-dashboard/internal/store"
	"github.com/BuzzLyutic/task-dashboard/internal/worker"
)

// Queue serializes remote writes that share a key.
type Queue interface {
	Submit(ctx context.Context, key string, job worker.Job) error
}

const createKey = "create"

type Options struct {
	Identity  model.Identity
	Lifecycle model.Lifecycle
	Logger    *zap.Logger
	Now       func() time.Time
}

// Engine owns one user's tasks. Every mutation is written to the remote store
// first and only becomes visible after the full reload that follows it; a
// failed write leaves the local snapshot as it was.
type Engine struct {
	remote    repo.DocumentStore
	queue     Queue
	identity  model.Identity
	lifecycle model.Lifecycle
	logger    *zap.Logger
	now       func() time.Time

	tasks *store.Store
	gen   atomic.Uint64
	// stale is set while the last reload failed, so the local copy may lag
	// behind writes that already went through.
	stale atomic.Bool

	mu      sync.RWMutex
	mapper  *idmap.Mapper
	applied uint64
	lastErr error
}

func NewEngine(remote repo.DocumentStore, queue Queue, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lifecycle == "" {
		opts.Lifecycle = model.LifecycleThreeState
	}
	return &Engine{
		remote:    remote,
		queue:     queue,
		identity:  opts.Identity,
		lifecycle: opts.Lifecycle,
		logger:    opts.Logger.With(zap.String("uid", opts.Identity.UID)),
		now:       opts.Now,
		tasks:     store.New(),
		mapper:    idmap.Empty(),
	}
}

// Load re-fetches everything from the remote store.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.reload(ctx); err != nil {
		return e.fail(err)
	}
	e.clearErr()
	return nil
}

func (e *Engine) reload(ctx context.Context) error {
	gen := e.gen.Add(1)
	docs, err := e.remote.ListAll(ctx)
	if err != nil {
		e.stale.Store(true)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	mapper, tasks := idmap.Rebuild(docs, gen)
	for i := range tasks {
		status, ok := e.lifecycle.Normalize(tasks[i].Status)
		if !ok {
			e.logger.Warn("unexpected task status",
				zap.String("handle", tasks[i].Handle),
				zap.String("status", string(tasks[i].Status)),
				zap.String("using", string(status)),
			)
		}
		tasks[i].Status = status
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// a reload that started later already applied a newer listing
	if gen <= e.applied {
		e.logger.Debug("discarding stale listing", zap.Uint64("gen", gen), zap.Uint64("applied", e.applied))
		return nil
	}
	e.mapper = mapper
	e.tasks.ReplaceAll(tasks)
	e.applied = gen
	e.stale.Store(false)
	e.logger.Debug("reloaded tasks", zap.Int("count", mapper.Len()), zap.Uint64("gen", gen))
	return nil
}

// Create persists a new pending task and returns its handle.
func (e *Engine) Create(ctx context.Context, draft model.Record) (string, error) {
	rec, err := e.prepare(draft)
	if err != nil {
		return "", e.fail(fmt.Errorf("%w: %w", ErrCreateFailed, err))
	}
	rec.Status = model.StatusPending

	var handle string
	err = e.submit(ctx, createKey, ErrCreateFailed, func(ctx context.Context) error {
		h, err := e.remote.Create(ctx, rec)
		handle = h
		return err
	})
	if err != nil {
		return "", err
	}
	e.logger.Info("task created", zap.String("handle", handle))
	return handle, nil
}

func (e *Engine) Delete(ctx context.Context, handle string) error {
	return e.mutate(ctx, handle, ErrDeleteFailed, func(ctx context.Context, _ model.Task) error {
		return e.remote.Delete(ctx, handle)
	})
}

// Advance moves a task to the next status of the lifecycle.
func (e *Engine) Advance(ctx context.Context, handle string) error {
	return e.mutate(ctx, handle, ErrStatusUpdateFailed, func(ctx context.Context, current model.Task) error {
		next := e.lifecycle.Next(current.Status)
		return e.remote.Update(ctx, handle, model.Fields{Status: &next})
	})
}

func (e *Engine) SetStatus(ctx context.Context, handle string, target model.Status) error {
	if !e.lifecycle.Allows(target) {
		return e.fail(fmt.Errorf("%w: %w: status %q", ErrStatusUpdateFailed, ErrValidation, target))
	}
	return e.mutate(ctx, handle, ErrStatusUpdateFailed, func(ctx context.Context, _ model.Task) error {
		return e.remote.Update(ctx, handle, model.Fields{Status: &target})
	})
}

func (e *Engine) SetPriority(ctx context.Context, handle string, p model.Priority) error {
	if !p.IsValid() {
		return e.fail(fmt.Errorf("%w: %w: priority %q", ErrPriorityUpdateFailed, ErrValidation, p))
	}
	return e.mutate(ctx, handle, ErrPriorityUpdateFailed, func(ctx context.Context, _ model.Task) error {
		return e.remote.Update(ctx, handle, model.Fields{Priority: &p})
	})
}

// Update edits the task's fields. Status changes go through SetStatus.
func (e *Engine) Update(ctx context.Context, handle string, f model.Fields) error {
	if f.Status != nil {
		return e.fail(fmt.Errorf("%w: %w: status is changed through transitions", ErrUpdateFailed, ErrValidation))
	}
	if f.IsEmpty() {
		return e.fail(fmt.Errorf("%w: %w: nothing to update", ErrUpdateFailed, ErrValidation))
	}
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		f.Title = &title
	}
	return e.mutate(ctx, handle, ErrUpdateFailed, func(ctx context.Context, current model.Task) error {
		if _, err := e.prepare(f.Apply(current.Record())); err != nil {
			return err
		}
		return e.remote.Update(ctx, handle, f)
	})
}

// Resolve maps a display id handed out by load gen to its handle. Ids from
// any load but the current one are TaskNotFound.
func (e *Engine) Resolve(localID int, gen uint64) (string, error) {
	e.mu.RLock()
	h, err := e.mapper.Resolve(localID, gen)
	e.mu.RUnlock()
	if err != nil {
		return "", e.fail(err)
	}
	return h, nil
}

// mutate runs write for an existing task through the queue and reloads after
// it. The task is looked up again when the job runs, so queued writes see the
// result of the ones before them. If the last reload failed the job reloads
// first rather than compute from an outdated task.
func (e *Engine) mutate(ctx context.Context, handle string, kind error, write func(context.Context, model.Task) error) error {
	// a stale copy cannot prove the task is gone; the job decides after reloading
	if _, ok := e.tasks.Get(handle); !ok && !e.stale.Load() {
		return e.fail(fmt.Errorf("%w: handle %s", ErrTaskNotFound, handle))
	}
	return e.submit(ctx, handle, kind, func(ctx context.Context) error {
		if e.stale.Load() {
			if err := e.reload(ctx); err != nil {
				return err
			}
		}
		current, ok := e.tasks.Get(handle)
		if !ok {
			return fmt.Errorf("%w: handle %s", ErrTaskNotFound, handle)
		}
		return write(ctx, current)
	})
}

func (e *Engine) submit(ctx context.Context, key string, kind error, write func(context.Context) error) error {
	var ran bool
	err := e.queue.Submit(ctx, key, func(ctx context.Context) error {
		ran = true
		// an accepted write runs to completion even if the caller goes away
		ctx = context.WithoutCancel(ctx)
		if err := write(ctx); err != nil {
			if errors.Is(err, repo.ErrorNotFound) {
				err = fmt.Errorf("%w: %w", ErrTaskNotFound, err)
			}
			return fmt.Errorf("%w: %w", kind, err)
		}
		return e.reload(ctx)
	})
	if err != nil {
		if !ran {
			err = fmt.Errorf("%w: %w", kind, err)
		}
		return e.fail(err)
	}
	e.clearErr()
	return nil
}

// prepare validates a record and fills the defaults of a new task.
func (e *Engine) prepare(r model.Record) (model.Record, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return r, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}
	if !r.Priority.IsValid() {
		return r, fmt.Errorf("%w: priority %q", ErrValidation, r.Priority)
	}
	if !r.Category.IsValid() {
		return r, fmt.Errorf("%w: category %q", ErrValidation, r.Category)
	}
	if r.DueDate != "" {
		if _, err := duedate.Parse(r.DueDate, time.UTC); err != nil {
			return r, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	return r, nil
}

func (e *Engine) fail(err error) error {
	e.logger.Warn("task operation failed", zap.String("kind", KindOf(err)), zap.Error(err))
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	return err
}

func (e *Engine) clearErr() {
	e.mu.Lock()
	e.lastErr = nil
	e.mu.Unlock()
}

func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Generation identifies the load the current display ids belong to.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mapper.Generation()
}

func (e *Engine) Identity() model.Identity {
	return e.identity
}

func (e *Engine) Lifecycle() model.Lifecycle {
	return e.lifecycle
}
