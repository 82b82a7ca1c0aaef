package qa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned when every worker is busy and the queue has no room.
	ErrQueueFull = errors.New("generation queue is full")
	// ErrPoolStopped is returned when the pool is not accepting work.
	ErrPoolStopped = errors.New("generation pool is stopped")
)

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	NumWorkers     int
	QueueSize      int
	ProcessTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:     2,
		QueueSize:      16,
		ProcessTimeout: 60 * time.Second,
	}
}

// Job is one pending generation.
type Job struct {
	ID       string
	Question string

	ctx    context.Context
	result chan jobResult
}

type jobResult struct {
	answer string
	err    error
}

// Pool runs generations on a fixed set of workers so request handlers
// never execute the model call themselves.
type Pool struct {
	config    PoolConfig
	generator Generator
	logger    types.Logger
	jobs      chan *Job
	done      chan struct{}
	workers   []*Worker
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	mu        sync.RWMutex
	running   bool
}

// NewPool creates a new worker pool.
func NewPool(cfg PoolConfig, generator Generator, logger types.Logger) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	return &Pool{
		config:    cfg,
		generator: generator,
		logger:    logger,
		workers:   make([]*Worker, 0, cfg.NumWorkers),
	}
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("pool is already running")
	}

	p.jobs = make(chan *Job, p.config.QueueSize)
	p.done = make(chan struct{})
	p.workers = p.workers[:0]

	// Workers outlive the start-up context; Stop cancels them.
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel

	for i := 0; i < p.config.NumWorkers; i++ {
		worker := NewWorker(fmt.Sprintf("worker-%d", i+1), p.config, p.generator, p.logger)
		p.workers = append(p.workers, worker)

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(workerCtx, p.jobs)
		}(worker)
	}

	p.running = true
	p.logger.Info("Generation pool started",
		"workers", p.config.NumWorkers,
		"queue_size", p.config.QueueSize)
	return nil
}

// Stop cancels in-flight generations and waits for the workers to exit.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.done)
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.logger.Info("All generation workers stopped")
	case <-ctx.Done():
		p.logger.Warn("Timeout waiting for generation workers to stop")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Submit queues a generation and waits for its answer. It never blocks on a
// full queue; it returns ErrQueueFull instead.
func (p *Pool) Submit(ctx context.Context, question string) (string, error) {
	job := &Job{
		ID:       uuid.NewString(),
		Question: question,
		ctx:      ctx,
		result:   make(chan jobResult, 1),
	}

	p.mu.RLock()
	if !p.running {
		p.mu.RUnlock()
		return "", ErrPoolStopped
	}
	done := p.done
	select {
	case p.jobs <- job:
	default:
		p.mu.RUnlock()
		return "", ErrQueueFull
	}
	p.mu.RUnlock()

	select {
	case r := <-job.result:
		return r.answer, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-done:
		return "", ErrPoolStopped
	}
}

// Worker executes queued generations.
type Worker struct {
	id        string
	config    PoolConfig
	generator Generator
	logger    types.Logger
}

// NewWorker creates a new worker.
func NewWorker(id string, cfg PoolConfig, generator Generator, logger types.Logger) *Worker {
	return &Worker{
		id:        id,
		config:    cfg,
		generator: generator,
		logger:    logger,
	}
}

// Run is the worker's main loop.
func (w *Worker) Run(ctx context.Context, jobs <-chan *Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jobs:
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	// The submitter already gave up.
	if job.ctx.Err() != nil {
		return
	}

	processCtx, cancel := context.WithTimeout(job.ctx, w.config.ProcessTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	answer, err := w.generator.Generate(processCtx, job.Question)
	duration := time.Since(start)

	if err != nil {
		w.logger.Error("Generation failed",
			"worker", w.id,
			"job_id", job.ID,
			"duration", duration.String(),
			"error", err)
	} else {
		w.logger.Debug("Generation completed",
			"worker", w.id,
			"job_id", job.ID,
			"duration", duration.String())
	}

	job.result <- jobResult{answer: answer, err: err}
}
