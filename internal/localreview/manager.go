package localreview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/store"
	pairerrors "github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/logger"
)

// Manager implements the local-review session lifecycle described in
// §4.5: start, diff retrieval, staleness detection, and refresh/rekey. It
// also implements orchestrator.DiffSource for local reviews.
type Manager struct {
	store store.Store

	mu    sync.RWMutex
	cache map[uint]captured // reviewID -> last capture, fast path for GetDiff
}

// NewManager creates a Manager backed by st.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st, cache: make(map[uint]captured)}
}

// Start discovers the git root enclosing path, captures the current
// working-tree diff, and upserts the (local_path, head_sha) review row.
func (m *Manager) Start(ctx context.Context, path string) (*model.Review, error) {
	root, err := showToplevel(ctx, path)
	if err != nil {
		return nil, pairerrors.ErrExternal("failed to discover git root", err)
	}

	sha, err := headSHA(ctx, root)
	if err != nil {
		return nil, pairerrors.ErrExternal("failed to read HEAD", err)
	}

	review, err := m.store.Review().UpsertLocal(root, sha)
	if err != nil {
		return nil, err
	}

	if err := m.captureAndPersist(ctx, review); err != nil {
		return nil, err
	}

	branch, _ := currentBranch(ctx, root) // best-effort; absent on a detached HEAD isn't fatal
	owner := originOwnerName(ctx, root)
	logger.Info("local review session started",
		zap.Uint("review_id", review.ID),
		zap.String("path", root),
		zap.String("head_sha", sha),
		zap.String("branch", branch),
		zap.String("owner_name", owner),
	)

	return review, nil
}

func (m *Manager) captureAndPersist(ctx context.Context, review *model.Review) error {
	snap, err := captureDiff(ctx, review.LocalPath)
	if err != nil {
		return pairerrors.ErrExternal("failed to capture diff", err)
	}

	snapshot := &model.LocalDiffSnapshot{
		ReviewID:   review.ID,
		DiffText:   snap.Text,
		Stats:      snap.Stats,
		Digest:     snap.Digest,
		CapturedAt: time.Now().UTC(),
	}
	if err := m.store.LocalDiff().Save(snapshot); err != nil {
		return err
	}

	m.mu.Lock()
	m.cache[review.ID] = snap
	m.mu.Unlock()

	return nil
}

// DiffResult is what GetDiff returns: the diff text and its capture stats.
type DiffResult struct {
	Text  string
	Stats map[string]any
}

// GetDiff prefers the in-memory cache (fast path after Start/Refresh in
// this process); on a cold read it falls back to the persisted snapshot.
func (m *Manager) GetDiff(review *model.Review) (DiffResult, error) {
	m.mu.RLock()
	snap, ok := m.cache[review.ID]
	m.mu.RUnlock()
	if ok {
		return DiffResult{Text: snap.Text, Stats: snap.Stats}, nil
	}

	snapshot, err := m.store.LocalDiff().Load(review.ID)
	if err != nil {
		return DiffResult{}, err
	}
	return DiffResult{Text: snapshot.DiffText, Stats: snapshot.Stats}, nil
}

// StalenessResult reports whether a review's working tree still matches
// the diff it was captured with, per §4.5's three-way (plus error) result.
type StalenessResult struct {
	IsStale         *bool
	OriginalHeadSHA string
	NewHeadSHA      string
	DiffChanged     bool
	Error           string
}

// StalenessCheck recomputes the current digest and compares it with the
// stored one, bounded by gitTimeout so a hung git operation can't hang the
// caller.
func (m *Manager) StalenessCheck(ctx context.Context, review *model.Review) StalenessResult {
	snapshot, err := m.store.LocalDiff().Load(review.ID)
	if err != nil {
		return StalenessResult{Error: err.Error()}
	}

	newSHA, err := headSHA(ctx, review.LocalPath)
	if err != nil {
		return StalenessResult{Error: err.Error()}
	}

	if newSHA != review.LocalHeadSHA {
		stale := true
		return StalenessResult{IsStale: &stale, OriginalHeadSHA: review.LocalHeadSHA, NewHeadSHA: newSHA}
	}

	snap, err := captureDiff(ctx, review.LocalPath)
	if err != nil {
		return StalenessResult{Error: err.Error()}
	}

	if snap.Digest == snapshot.Digest {
		notStale := false
		return StalenessResult{IsStale: &notStale}
	}

	stale := true
	return StalenessResult{IsStale: &stale, DiffChanged: true}
}

// RefreshResult reports the outcome of Refresh, including whether a new
// review session was created for a changed HEAD.
type RefreshResult struct {
	SessionChanged  bool
	NewReview       *model.Review
	OriginalHeadSHA string
	NewHeadSHA      string
}

// Refresh recaptures the working tree and upsert-persists it. If HEAD has
// moved since review was started, it creates (or reuses) a new review
// session bound to the new HEAD rather than mutating review in place -
// comments and suggestions already recorded stay coherent against the old
// HEAD's diff.
func (m *Manager) Refresh(ctx context.Context, review *model.Review) (RefreshResult, error) {
	newSHA, err := headSHA(ctx, review.LocalPath)
	if err != nil {
		return RefreshResult{}, pairerrors.ErrExternal("failed to read HEAD", err)
	}

	if newSHA == review.LocalHeadSHA {
		if err := m.captureAndPersist(ctx, review); err != nil {
			return RefreshResult{}, err
		}
		return RefreshResult{}, nil
	}

	newReview, err := m.store.Review().UpsertLocal(review.LocalPath, newSHA)
	if err != nil {
		return RefreshResult{}, err
	}
	if err := m.captureAndPersist(ctx, newReview); err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		SessionChanged:  true,
		NewReview:       newReview,
		OriginalHeadSHA: review.LocalHeadSHA,
		NewHeadSHA:      newSHA,
	}, nil
}

// RepositoryInfo best-effort-resolves the "owner/name" and current branch
// for review's working tree, for display in the start/session response.
// Either may be empty (no origin remote, detached HEAD) without error.
func (m *Manager) RepositoryInfo(ctx context.Context, review *model.Review) (repository, branch string) {
	branch, _ = currentBranch(ctx, review.LocalPath)
	repository = originOwnerName(ctx, review.LocalPath)
	return repository, branch
}

// Load implements orchestrator.DiffSource: opening an old-HEAD session
// (§4.5's "session rekey") is permitted since diff lookup is keyed purely
// on the review's own id/head SHA, never on "is this the latest session".
func (m *Manager) Load(ctx context.Context, review *model.Review) (orchestrator.DiffContext, error) {
	result, err := m.GetDiff(review)
	if err != nil {
		return orchestrator.DiffContext{}, err
	}
	return orchestrator.DiffContext{Text: result.Text, WorkDir: review.LocalPath}, nil
}
