package orchestrator

import (
	"context"
	"sort"
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

// runExecution holds the per-run state threaded through level and voice
// execution: the review and diff being analyzed, the running totals, and
// whether per-level output is raw (council, or advanced with a finalization
// pass) or already final.
type runExecution struct {
	o      *Orchestrator
	job    *RunJob
	review *model.Review
	diff   DiffContext
	coord  *runCoordinator
	isRaw  bool
	totals *runTotals

	mu   sync.Mutex
	union []provider.Suggestion
}

// runLevels executes every level of the plan in ascending order. Returns a
// non-empty error message if the run as a whole must fail. In council mode,
// individual voice failures are isolated to their child run and never
// surface here.
func (e *runExecution) runLevels(ctx context.Context) string {
	levels := append([]Level(nil), e.job.Plan.Levels...)
	sort.Slice(levels, func(i, j int) bool { return levels[i].Number < levels[j].Number })

	var priorDigest []provider.Suggestion
	for _, level := range levels {
		if e.coord.isCancelled() || ctx.Err() != nil {
			return ""
		}

		results, errMsg := e.runLevel(ctx, level, priorDigest)
		if errMsg != "" {
			return errMsg
		}
		priorDigest = results
		e.appendUnion(results)
	}
	return ""
}

func (e *runExecution) appendUnion(suggestions []provider.Suggestion) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.union = append(e.union, suggestions...)
}

// runLevel runs every voice in a level in parallel. For single/advanced
// (exactly one voice) a voice failure aborts the run. For council, a voice
// failure is isolated to its own child run and the level proceeds with
// whatever voices succeeded.
func (e *runExecution) runLevel(ctx context.Context, level Level, priorDigest []provider.Suggestion) ([]provider.Suggestion, string) {
	isCouncil := e.job.Plan.Type == model.RunConfigTypeCouncil

	var wg sync.WaitGroup
	var mu sync.Mutex
	var combined []provider.Suggestion
	var firstErr error

	for _, voice := range level.Voices {
		wg.Add(1)
		go func(v Voice) {
			defer wg.Done()
			suggestions, err := e.spawnVoice(ctx, level.Number, v, priorDigest, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("voice failed",
					zap.String("run_id", e.job.RunID),
					zap.Int("level", level.Number),
					zap.String("provider", v.Provider),
					zap.Error(err),
				)
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			combined = append(combined, suggestions...)
		}(voice)
	}
	wg.Wait()

	if firstErr != nil && !isCouncil {
		return nil, firstErr.Error()
	}
	return combined, ""
}

// runOrchestration spawns the finalization voice with the union of every
// level's suggestions as input and persists its output as the final,
// non-raw set.
func (e *runExecution) runOrchestration(ctx context.Context) error {
	e.mu.Lock()
	union := append([]provider.Suggestion(nil), e.union...)
	e.mu.Unlock()

	_, err := e.spawnVoice(ctx, len(e.job.Plan.Levels)+1, *e.job.Plan.Orchestration, union, true)
	return err
}

// spawnVoice runs a single voice invocation end to end: creates its child
// run row (or targets the parent row directly for a single-voice plan with
// no finalization), builds the prompt, spawns the provider subprocess,
// streams and persists its suggestions, and stamps the child run's terminal
// status.
func (e *runExecution) spawnVoice(ctx context.Context, level int, voice Voice, priorDigest []provider.Suggestion, aggregating bool) ([]provider.Suggestion, error) {
	o := e.o
	childRunID := e.job.RunID
	isChild := e.job.Plan.Type != model.RunConfigTypeSingle

	if isChild {
		child := &model.AnalysisRun{
			ID:          idgen.NewRunID(),
			ReviewID:    e.job.ReviewID,
			Provider:    &voice.Provider,
			Model:       &voice.Model,
			Tier:        &voice.Tier,
			Status:      model.RunStatusRunning,
			ParentRunID: &e.job.RunID,
			ConfigType:  e.job.Plan.Type,
			HeadSHA:     e.review.LocalHeadSHA,
			StartedAt:   time.Now().UTC(),
		}
		if err := o.store.AnalysisRun().Create(child); err != nil {
			return nil, err
		}
		childRunID = child.ID
	} else {
		if err := o.store.AnalysisRun().UpdateProgress(childRunID, model.RunStatusRunning, nil, 0, 0, model.RunStatusCancelled); err != nil {
			logger.Warn("failed to mark single-voice run running", zap.String("run_id", childRunID), zap.Error(err))
		}
	}

	promptText, err := o.prompts.Build(ctx, PromptRequest{
		Review:              e.review,
		Diff:                e.diff,
		Level:               level,
		Voice:               voice,
		RequestInstructions: e.job.Plan.RequestInstructions,
		RepoInstructions:    e.job.Plan.RepoInstructions,
		PriorSuggestions:    priorDigest,
		Aggregating:         aggregating,
	})
	if err != nil {
		o.failChild(childRunID, "failed to build prompt: "+err.Error())
		return nil, err
	}

	adapter, err := o.newAdapter(voice.Provider, nil)
	if err != nil {
		o.failChild(childRunID, "provider unavailable: "+err.Error())
		return nil, err
	}

	inv, err := adapter.Spawn(ctx, provider.SpawnRequest{
		Prompt:  promptText,
		Model:   voice.Model,
		WorkDir: e.diff.WorkDir,
		Yolo:    o.yolo,
	})
	if err != nil {
		o.failChild(childRunID, "failed to spawn provider: "+err.Error())
		return nil, pairerrors.ErrProviderFailed("failed to spawn "+voice.Provider, err)
	}

	var suggestions []provider.Suggestion
	files := map[string]bool{}
	for event := range inv.Parse() {
		switch event.Kind {
		case provider.EventSuggestion:
			if event.Suggestion != nil {
				suggestions = append(suggestions, *event.Suggestion)
				files[event.Suggestion.File] = true
			}
		case provider.EventFileStart, provider.EventFileEnd:
			if event.File != "" {
				files[event.File] = true
			}
			o.publish(e.job, string(event.Kind), "running", event.File)
		}
	}

	exitErr := inv.Exit()

	voiceID := ""
	if e.job.Plan.Type == model.RunConfigTypeCouncil {
		voiceID = voice.ID
		if voiceID == "" {
			voiceID = voice.Provider
		}
	}
	isRaw := e.isRaw && !aggregating

	if len(suggestions) > 0 {
		raw := toRawSuggestions(suggestions, level, voiceID, isRaw, e.review.LocalHeadSHA)
		if bulkErr := o.store.Comment().BulkInsertSuggestions(childRunID, raw); bulkErr != nil {
			logger.Warn("failed to persist suggestions", zap.String("run_id", childRunID), zap.Error(bulkErr))
		} else {
			e.totals.add(len(raw), keys(files))
		}
	}

	finalStatus := model.RunStatusCompleted
	var childErrMsg *string
	if exitErr != nil {
		finalStatus = model.RunStatusFailed
		msg := exitErr.Error()
		childErrMsg = &msg
	}
	total, fileCount := len(suggestions), len(files)
	if updateErr := o.store.AnalysisRun().UpdateProgress(childRunID, finalStatus, childErrMsg, total, fileCount, model.RunStatusCancelled); updateErr != nil {
		logger.Warn("failed to update child run status", zap.String("run_id", childRunID), zap.Error(updateErr))
	}

	if exitErr != nil {
		return suggestions, exitErr
	}
	return suggestions, nil
}

func (o *Orchestrator) failChild(runID string, message string) {
	msg := message
	if err := o.store.AnalysisRun().UpdateProgress(runID, model.RunStatusFailed, &msg, 0, 0, ""); err != nil {
		logger.Warn("failed to mark child run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func toRawSuggestions(suggestions []provider.Suggestion, level int, voiceID string, isRaw bool, headSHA string) []store.RawSuggestion {
	raw := make([]store.RawSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		r := store.RawSuggestion{
			File:       s.File,
			Line:       s.Line,
			LineEnd:    s.LineEnd,
			Side:       s.Side,
			Type:       s.Type,
			Title:      s.Title,
			Body:       s.Body,
			Reasoning:  s.Reasoning,
			Confidence: s.Confidence,
			Level:      level,
			IsRaw:      isRaw,
		}
		if voiceID != "" {
			id := voiceID
			r.VoiceID = &id
		}
		if headSHA != "" {
			sha := headSHA
			r.CommitSHA = &sha
		}
		raw = append(raw, r)
	}
	return raw
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
