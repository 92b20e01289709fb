package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/logger"
)

// Dispatcher pulls admitted runs off a ReviewRunQueue and executes them on a
// bounded worker pool, directly generalized from the teacher's
// engine.Dispatcher.
type Dispatcher struct {
	queue      *ReviewRunQueue
	jobQueue   chan *RunJob
	maxWorkers int
	workerWg   sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	processFunc func(context.Context, *RunJob)

	running bool
	mu      sync.Mutex
}

// DispatcherConfig configures the worker pool. MaxWorkers matches the
// teacher's defaultMaxConcurrent of 3, per §4.3's "MaxConcurrentRuns,
// default 3".
type DispatcherConfig struct {
	MaxWorkers int
	QueueSize  int
}

// DefaultDispatcherConfig returns the default MaxConcurrentRuns=3 pool size.
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{MaxWorkers: 3, QueueSize: 100}
}

// NewDispatcher creates a Dispatcher bound to queue, invoking processFunc
// for every job a worker picks up.
func NewDispatcher(ctx context.Context, queue *ReviewRunQueue, config *DispatcherConfig, processFunc func(context.Context, *RunJob)) *Dispatcher {
	if config == nil {
		config = DefaultDispatcherConfig()
	}

	dispatcherCtx, cancel := context.WithCancel(ctx)

	d := &Dispatcher{
		queue:       queue,
		jobQueue:    make(chan *RunJob, config.QueueSize),
		maxWorkers:  config.MaxWorkers,
		ctx:         dispatcherCtx,
		cancel:      cancel,
		processFunc: processFunc,
	}

	logger.Info("Orchestrator dispatcher created",
		zap.Int("max_workers", config.MaxWorkers),
		zap.Int("queue_size", config.QueueSize),
	)
	return d
}

// Start launches the worker pool and the dispatch loop.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	logger.Info("Starting orchestrator dispatcher", zap.Int("workers", d.maxWorkers))

	for i := 0; i < d.maxWorkers; i++ {
		d.workerWg.Add(1)
		go d.worker(i)
	}

	go d.dispatchLoop()
}

func (d *Dispatcher) dispatchLoop() {
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.queue.JobReady():
			d.tryDispatch()
		}
	}
}

func (d *Dispatcher) tryDispatch() {
	for {
		job := d.queue.Dequeue()
		if job == nil {
			return
		}

		select {
		case d.jobQueue <- job:
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.workerWg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case job, ok := <-d.jobQueue:
			if !ok {
				return
			}
			if job == nil {
				continue
			}

			logger.Info("Worker executing run",
				zap.Int("worker_id", id),
				zap.String("run_id", job.RunID),
				zap.Uint("review_id", job.ReviewID),
			)

			start := time.Now()
			d.processFunc(d.ctx, job)
			logger.Info("Worker finished run",
				zap.Int("worker_id", id),
				zap.String("run_id", job.RunID),
				zap.Duration("duration", time.Since(start)),
			)

			d.queue.MarkComplete(job.ReviewID, job.RunID)
		}
	}
}

// Stop signals workers to stop and waits for in-flight runs to return.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.cancel()
	close(d.jobQueue)
	d.workerWg.Wait()

	logger.Info("Orchestrator dispatcher stopped")
}

// IsRunning reports whether the dispatcher is started.
func (d *Dispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}
