package orchestrator

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/provider"
	"github.com/pairreview/pairreview/internal/store"
	pairerrors "github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/idgen"
	"github.com/pairreview/pairreview/pkg/logger"
)

// Orchestrator is the hard heart described in §4.3: it drives an analysis
// run from a resolved VoicePlan through provider subprocess execution to a
// persisted, broadcast result.
type Orchestrator struct {
	store      store.Store
	diffs      DiffSource
	prompts    PromptBuilder
	newAdapter ProviderFactory
	publisher  Publisher
	yolo       bool

	queue      *ReviewRunQueue
	dispatcher *Dispatcher
	coords     *coordinatorRegistry
}

// Config configures the orchestrator's worker pool and spawn behavior.
type Config struct {
	MaxConcurrentRuns int
	// Yolo is forwarded to every provider spawn request, selecting each
	// provider's permission-bypassing argv per §4.2.1.
	Yolo bool
}

// DefaultConfig returns MaxConcurrentRuns=3, per §4.3.
func DefaultConfig() Config {
	return Config{MaxConcurrentRuns: 3}
}

// New builds an Orchestrator. newAdapter defaults to provider.New when nil.
func New(ctx context.Context, st store.Store, diffs DiffSource, prompts PromptBuilder, publisher Publisher, cfg Config, newAdapter ProviderFactory) *Orchestrator {
	if newAdapter == nil {
		newAdapter = provider.New
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = DefaultConfig().MaxConcurrentRuns
	}

	o := &Orchestrator{
		store:      st,
		diffs:      diffs,
		prompts:    prompts,
		newAdapter: newAdapter,
		publisher:  publisher,
		yolo:       cfg.Yolo,
		queue:      NewReviewRunQueue(ctx),
		coords:     newCoordinatorRegistry(),
	}
	o.dispatcher = NewDispatcher(ctx, o.queue, &DispatcherConfig{MaxWorkers: cfg.MaxConcurrentRuns, QueueSize: 100}, o.executeRun)
	return o
}

// Start launches the dispatcher's worker pool.
func (o *Orchestrator) Start() { o.dispatcher.Start() }

// Stop stops the dispatcher and the queue.
func (o *Orchestrator) Stop() {
	o.dispatcher.Stop()
	o.queue.Stop()
}

// TriggerRun admits a new analysis run for review per the voice plan. It
// persists the run row(s) synchronously (so the caller has an id to report
// back immediately per §6.1's async trigger pattern) and hands the run to
// the dispatcher for asynchronous execution.
//
// Returns a Conflict error carrying the existing run's id if review already
// has a non-terminal run (§4.3 "Re-entrancy").
func (o *Orchestrator) TriggerRun(ctx context.Context, review *model.Review, plan VoicePlan) (*model.AnalysisRun, error) {
	if len(plan.Levels) == 0 {
		return nil, pairerrors.ErrInvalidInput("voice plan must have at least one level")
	}

	run := &model.AnalysisRun{
		ID:                  idgen.NewRunID(),
		ReviewID:            review.ID,
		Status:              model.RunStatusPending,
		ConfigType:          plan.Type,
		HeadSHA:             review.LocalHeadSHA,
		RequestInstructions: plan.RequestInstructions,
		RepoInstructions:    plan.RepoInstructions,
		StartedAt:           time.Now().UTC(),
	}
	if plan.Type == model.RunConfigTypeSingle {
		voice := plan.Levels[0].Voices[0]
		run.Provider = &voice.Provider
		run.Model = &voice.Model
		run.Tier = &voice.Tier
	}

	job := &RunJob{RunID: run.ID, ReviewID: review.ID, Plan: plan}
	if conflictID, ok := o.queue.Enqueue(job); !ok {
		return nil, pairerrors.ErrConflict("review " + uintID(review.ID) + " already has an in-progress run: " + conflictID)
	}

	if err := o.store.AnalysisRun().Create(run); err != nil {
		o.queue.MarkComplete(review.ID, run.ID)
		return nil, err
	}

	return run, nil
}

// Cancel signals cooperative cancellation for a running run. Safe to call
// for a run that has already reached a terminal state; it is then a no-op.
func (o *Orchestrator) Cancel(runID string) bool {
	return o.coords.requestCancel(runID)
}

// executeRun is the Dispatcher's processFunc: it runs every level of the
// plan in order, persists suggestions as each voice finishes, runs the
// optional orchestration aggregation pass, and stamps the run terminal.
func (o *Orchestrator) executeRun(dispatcherCtx context.Context, job *RunJob) {
	runCtx, cancel := context.WithCancel(dispatcherCtx)
	defer cancel()
	coord := o.coords.register(job.RunID, cancel)
	defer o.coords.evict(job.RunID)

	review, err := o.store.Review().GetByID(job.ReviewID)
	if err != nil {
		o.finishRun(job.RunID, coord, nil, model.RunStatusFailed, "failed to load review: "+err.Error())
		return
	}

	if err := o.store.AnalysisRun().UpdateProgress(job.RunID, model.RunStatusRunning, nil, 0, 0, model.RunStatusCancelled); err != nil {
		logger.Warn("failed to mark run running", zap.String("run_id", job.RunID), zap.Error(err))
	}
	o.publish(job, "running", "", "")

	diff, err := o.diffs.Load(runCtx, review)
	if err != nil {
		o.finishRun(job.RunID, coord, nil, model.RunStatusFailed, "failed to load diff: "+err.Error())
		return
	}

	exec := &runExecution{
		o:       o,
		job:     job,
		review:  review,
		diff:    diff,
		coord:   coord,
		isRaw:   job.Plan.HasOrchestration(),
		totals:  &runTotals{},
	}

	failed := exec.runLevels(runCtx)
	if coord.isCancelled() {
		o.finishRun(job.RunID, coord, exec.totals, model.RunStatusCancelled, "")
		return
	}
	if failed != "" {
		o.finishRun(job.RunID, coord, exec.totals, model.RunStatusFailed, failed)
		return
	}

	if job.Plan.HasOrchestration() {
		if err := exec.runOrchestration(runCtx); err != nil {
			o.finishRun(job.RunID, coord, exec.totals, model.RunStatusFailed, "orchestration failed: "+err.Error())
			return
		}
	}

	o.finishRun(job.RunID, coord, exec.totals, model.RunStatusCompleted, "")
}

// finishRun claims the terminal transition for a run (at most once, see
// runCoordinator) and persists it along with the accumulated totals.
func (o *Orchestrator) finishRun(runID string, coord *runCoordinator, totals *runTotals, status model.RunStatus, errMsg string) {
	if !coord.claimTerminal() {
		return
	}

	totalSuggestions, filesAnalyzed := 0, 0
	if totals != nil {
		totalSuggestions, filesAnalyzed = totals.snapshot()
	}

	var summary *string
	if errMsg != "" {
		msg := errMsg
		summary = &msg
	}
	if updateErr := o.store.AnalysisRun().UpdateProgress(runID, status, summary, totalSuggestions, filesAnalyzed, ""); updateErr != nil {
		logger.Warn("failed to persist terminal run status",
			zap.String("run_id", runID), zap.String("status", string(status)), zap.Error(updateErr))
	}

	logger.Info("run reached terminal status",
		zap.String("run_id", runID), zap.String("status", string(status)))
}

func (o *Orchestrator) publish(job *RunJob, stage, status, file string) {
	if o.publisher == nil {
		return
	}
	event := map[string]any{
		"type":   "progress",
		"run_id": job.RunID,
		"stage":  stage,
	}
	if status != "" {
		event["status"] = status
	}
	if file != "" {
		event["file"] = file
	}
	o.publisher.Publish(RunTopic(job.RunID), event)
	o.publisher.Publish(ReviewTopic(job.ReviewID), event)
}

// runTotals accumulates suggestion counts across a run's voices, guarded by
// its own mutex since voices in a level finish concurrently.
type runTotals struct {
	mu            sync.Mutex
	suggestions   int
	files         map[string]bool
}

func (t *runTotals) add(n int, files []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suggestions += n
	if t.files == nil {
		t.files = make(map[string]bool)
	}
	for _, f := range files {
		t.files[f] = true
	}
}

func (t *runTotals) snapshot() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suggestions, len(t.files)
}

func uintID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
