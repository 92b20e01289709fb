package orchestrator

import (
	"container/list"
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/logger"
)

// RunJob is one admitted analysis run waiting for a dispatcher worker.
type RunJob struct {
	RunID    string
	ReviewID uint
	Plan     VoicePlan
}

// ReviewRunQueue enforces the re-entrancy rule in §4.3: at most one
// non-terminal run per review at a time. It is a direct generalization of
// the teacher's per-repo RepoTaskQueue, with the per-key "running" flag
// doing the enforcement and the FIFO list feeding a bounded worker pool
// across different reviews' runs instead of across different repos'.
//
// Unlike the teacher's queue, a second admission attempt for a review that
// already has a non-terminal run is never queued behind the first - it is
// refused outright, so the caller can report the existing run's id as a
// conflict (§4.3 "Re-entrancy").
type ReviewRunQueue struct {
	mu sync.RWMutex

	// activeRunByReview holds the run id currently occupying each review,
	// whether still pending dispatch or already running.
	activeRunByReview map[uint]string

	pending *list.List // of *RunJob, FIFO across reviews

	jobReady chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewReviewRunQueue creates a new ReviewRunQueue.
func NewReviewRunQueue(ctx context.Context) *ReviewRunQueue {
	queueCtx, cancel := context.WithCancel(ctx)

	q := &ReviewRunQueue{
		activeRunByReview: make(map[uint]string),
		pending:           list.New(),
		jobReady:          make(chan struct{}, 100),
		ctx:               queueCtx,
		cancel:            cancel,
	}

	logger.Info("ReviewRunQueue initialized")
	return q
}

// Enqueue admits a job. If the review already has a non-terminal run, it is
// refused and the existing run's id is returned as conflictRunID.
func (q *ReviewRunQueue) Enqueue(job *RunJob) (conflictRunID string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, busy := q.activeRunByReview[job.ReviewID]; busy {
		return existing, false
	}

	q.activeRunByReview[job.ReviewID] = job.RunID
	q.pending.PushBack(job)
	q.signalJobReady()

	logger.Info("Run admitted to queue",
		zap.String("run_id", job.RunID),
		zap.Uint("review_id", job.ReviewID),
	)
	return "", true
}

// Dequeue returns the next job ready for a worker, or nil if none is queued.
func (q *ReviewRunQueue) Dequeue() *RunJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	elem := q.pending.Front()
	if elem == nil {
		return nil
	}
	q.pending.Remove(elem)
	return elem.Value.(*RunJob)
}

// MarkComplete releases a review's slot once its run reaches a terminal
// state, allowing a subsequent run to be admitted.
func (q *ReviewRunQueue) MarkComplete(reviewID uint, runID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if current, ok := q.activeRunByReview[reviewID]; ok && current == runID {
		delete(q.activeRunByReview, reviewID)
		logger.Info("Run released from queue",
			zap.String("run_id", runID),
			zap.Uint("review_id", reviewID),
		)
	}
}

// JobReady returns the channel that signals when a job is ready to dequeue.
func (q *ReviewRunQueue) JobReady() <-chan struct{} {
	return q.jobReady
}

func (q *ReviewRunQueue) signalJobReady() {
	select {
	case q.jobReady <- struct{}{}:
	default:
	}
}

// ActiveRun returns the run id currently occupying a review, if any.
func (q *ReviewRunQueue) ActiveRun(reviewID uint) (string, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	id, ok := q.activeRunByReview[reviewID]
	return id, ok
}

// Stop cancels the queue's context.
func (q *ReviewRunQueue) Stop() {
	q.cancel()
	close(q.jobReady)
	logger.Info("ReviewRunQueue stopped")
}

// Context returns the queue's context.
func (q *ReviewRunQueue) Context() context.Context {
	return q.ctx
}
