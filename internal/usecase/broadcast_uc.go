package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/repository"
	"telegram-channel-broadcast/internal/infra/metrics"
	"telegram-channel-broadcast/internal/infra/worker"
)

// BroadcastUseCase drives the distribution protocol: it owns the
// principal-to-session table (one live session per principal, no package
// globals), feeds the collector, and hands completed sessions to the
// dispatcher through the worker pool so one principal's pass never blocks
// another's.
type BroadcastUseCase struct {
	mu       sync.Mutex
	sessions map[int64]*model.DistributionSession

	directory  *DirectoryUseCase
	scheduled  repository.ScheduledPostRepository
	dispatcher *Dispatcher
	pool       *worker.Pool
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	directory *DirectoryUseCase,
	scheduled repository.ScheduledPostRepository,
	dispatcher *Dispatcher,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *BroadcastUseCase {
	l := logger.With().Str("component", "BroadcastUC").Logger()
	return &BroadcastUseCase{
		sessions:   make(map[int64]*model.DistributionSession),
		directory:  directory,
		scheduled:  scheduled,
		dispatcher: dispatcher,
		pool:       pool,
		log:        &l,
	}
}

// Start opens a new session for the principal, snapshotting the current
// channel list. An existing session still in collection is discarded and
// replaced (re-running /post restarts the flow); a session mid-dispatch is
// not.
func (uc *BroadcastUseCase) Start(ctx context.Context, principalID, chatID int64) (*model.DistributionSession, error) {
	channels, err := uc.directory.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if len(channels) == 0 {
		return nil, domain.ErrNoChannels
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if existing, ok := uc.sessions[principalID]; ok {
		if existing.Phase() == model.PhaseSending {
			return nil, domain.ErrSendingInProgress
		}
		_ = existing.Cancel()
		delete(uc.sessions, principalID)
	}

	session, err := model.NewDistributionSession(principalID, chatID, channels)
	if err != nil {
		return nil, err
	}
	uc.sessions[principalID] = session
	metrics.SetActiveSessions(len(uc.sessions))
	uc.log.Info().
		Str("session_id", session.ID).
		Int64("principal", principalID).
		Int("required", session.RequiredCount()).
		Msg("distribution session started")
	return session, nil
}

// Get returns the principal's live session, if any.
func (uc *BroadcastUseCase) Get(principalID int64) (*model.DistributionSession, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, ok := uc.sessions[principalID]
	return s, ok
}

// End clears the principal's session entry unconditionally. Used on
// completion, cancellation and error paths alike.
func (uc *BroadcastUseCase) End(principalID int64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.sessions, principalID)
	metrics.SetActiveSessions(len(uc.sessions))
}

// Submit feeds one post into the principal's collecting session.
func (uc *BroadcastUseCase) Submit(ctx context.Context, principalID int64, post model.Post) (model.CollectOutcome, error) {
	session, ok := uc.Get(principalID)
	if !ok {
		return model.CollectOutcome{}, domain.ErrNoSession
	}
	outcome := session.Collect(post)
	if outcome.Result == model.CollectOverflow {
		metrics.IncCollectOverflow()
	}
	return outcome, nil
}

// SendNow moves a ready session into sending and schedules the dispatch pass
// on the worker pool. notify receives the report once the pass has covered
// every pairing; the session is cleared before notify runs.
func (uc *BroadcastUseCase) SendNow(ctx context.Context, principalID int64, notify func(model.DistributionReport)) error {
	session, ok := uc.Get(principalID)
	if !ok {
		return domain.ErrNoSession
	}
	if err := session.BeginSending(); err != nil {
		return err
	}

	task := uc.dispatchTask(session, principalID, notify)
	if err := uc.pool.Submit(task); err != nil {
		// The pool is saturated; the session cannot return to ready, so drop
		// it and tell the caller.
		uc.log.Error().Err(err).Int64("principal", principalID).Msg("failed to queue dispatch pass")
		uc.End(principalID)
		return domain.ErrOperationFailed
	}
	return nil
}

// dispatchTask wraps one dispatch pass as a worker-pool task.
func (uc *BroadcastUseCase) dispatchTask(session *model.DistributionSession, principalID int64, notify func(model.DistributionReport)) worker.Task {
	return func(ctx context.Context) error {
		report := uc.dispatcher.Dispatch(ctx, session)
		uc.End(principalID)
		if notify != nil {
			notify(report)
		}
		return nil
	}
}

// Cancel discards the principal's session before sending begins. Cancelling
// mid-dispatch is rejected, not silently ignored.
func (uc *BroadcastUseCase) Cancel(ctx context.Context, principalID int64) error {
	session, ok := uc.Get(principalID)
	if !ok {
		return domain.ErrNoSession
	}
	if err := session.Cancel(); err != nil {
		return err
	}
	uc.End(principalID)
	uc.log.Info().Str("session_id", session.ID).Int64("principal", principalID).Msg("session cancelled")
	return nil
}

// Schedule persists one scheduled-post record per pairing with the stated
// timestamp and ends the session with no dispatch side effects. No delivery
// process consumes these records; this mirrors the send-later stub the bot
// has always had.
func (uc *BroadcastUseCase) Schedule(ctx context.Context, principalID int64, at time.Time) (int, error) {
	session, ok := uc.Get(principalID)
	if !ok {
		return 0, domain.ErrNoSession
	}
	if session.Phase() != model.PhaseReadyToSend {
		return 0, domain.ErrNotReady
	}

	saved := 0
	for _, pair := range session.Pairings() {
		rec, err := model.NewScheduledPost(pair.Channel, pair.Post, at, principalID)
		if err != nil {
			return saved, err
		}
		if err := uc.scheduled.Save(ctx, repository.NoTX, rec); err != nil {
			return saved, fmt.Errorf("save scheduled post: %w", err)
		}
		saved++
	}

	_ = session.Cancel() // leave ready_to_send without dispatching
	uc.End(principalID)
	metrics.AddScheduledPosts(saved)
	uc.log.Info().
		Str("session_id", session.ID).
		Int64("principal", principalID).
		Time("scheduled_for", at).
		Int("records", saved).
		Msg("session stored for later delivery")
	return saved, nil
}

// CancelExpired sweeps sessions idle for at least ttl and cancels them,
// bounding memory held by abandoned flows. Returns how many were dropped.
func (uc *BroadcastUseCase) CancelExpired(now time.Time, ttl time.Duration) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	dropped := 0
	for principal, session := range uc.sessions {
		if !session.IdleSince(now, ttl) {
			continue
		}
		if err := session.Cancel(); err != nil {
			continue
		}
		delete(uc.sessions, principal)
		dropped++
		uc.log.Info().Str("session_id", session.ID).Int64("principal", principal).Msg("idle session expired")
	}
	if dropped > 0 {
		metrics.SetActiveSessions(len(uc.sessions))
		metrics.AddSessionsExpired(dropped)
	}
	return dropped
}
