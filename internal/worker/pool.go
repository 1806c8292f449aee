package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("worker pool stopped")

// Job is one remote write.
type Job func(ctx context.Context) error

type request struct {
	ctx  context.Context
	key  string
	job  Job
	done chan error
}

// Pool runs jobs on a fixed set of workers. Jobs with the same key always land
// on the same worker, so writes against one task run in submission order.
type Pool struct {
	logger  *zap.Logger
	count   int
	queues  []chan request
	wg      sync.WaitGroup
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewPool(logger *zap.Logger, count int) *Pool {
	if count < 1 {
		count = 1
	}
	queues := make([]chan request, count)
	for i := range queues {
		queues[i] = make(chan request, 16)
	}
	return &Pool{
		logger:  logger,
		count:   count,
		queues:  queues,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	context.AfterFunc(ctx, p.Stop)
}

func (p *Pool) Stop() {
	p.once.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
		p.wg.Wait()
		close(p.stopped)
		p.logger.Info("Worker pool stopped")
	})
}

// Submit queues job under key and waits for it to finish. ctx only bounds the
// wait for a queue slot; once accepted the job runs to completion.
func (p *Pool) Submit(ctx context.Context, key string, job Job) error {
	req := request{ctx: ctx, key: key, job: job, done: make(chan error, 1)}

	select {
	case <-p.stop:
		return ErrStopped
	default:
	}

	select {
	case p.queues[p.shard(key)] <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stop:
		return ErrStopped
	}

	select {
	case err := <-req.done:
		return err
	case <-p.stopped:
		select {
		case err := <-req.done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (p *Pool) shard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.count))
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	queue := p.queues[id]

	for {
		select {
		case <-p.stop:
			p.drain(queue)
			return
		case req := <-queue:
			p.run(id, req)
		}
	}
}

func (p *Pool) run(workerID int, req request) {
	start := time.Now()
	err := req.job(req.ctx)
	req.done <- err

	if err != nil {
		p.logger.Debug("job failed",
			zap.Int("worker", workerID),
			zap.String("key", req.key),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("job done",
		zap.Int("worker", workerID),
		zap.String("key", req.key),
		zap.Duration("took", time.Since(start)),
	)
}

// drain fails whatever is still queued so no submitter waits forever.
func (p *Pool) drain(queue chan request) {
	for {
		select {
		case req := <-queue:
			req.done <- ErrStopped
		default:
			return
		}
	}
}
