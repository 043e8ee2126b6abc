package model

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram-channel-broadcast/internal/domain"
)

type SessionPhase string

const (
	PhaseCollecting  SessionPhase = "collecting"
	PhaseReadyToSend SessionPhase = "ready_to_send"
	PhaseSending     SessionPhase = "sending"
	PhaseCompleted   SessionPhase = "completed"
	PhaseCancelled   SessionPhase = "cancelled"
)

type CollectResult string

const (
	CollectNeedMore CollectResult = "need_more"
	CollectReady    CollectResult = "ready"
	CollectOverflow CollectResult = "overflow"
)

// CollectOutcome is the result of submitting one post to a session.
// Remaining is meaningful only for CollectNeedMore.
type CollectOutcome struct {
	Result    CollectResult
	Remaining int
}

// Pairing binds the i-th collected post to the i-th channel of the session's
// snapshot. The positional association is a hard contract.
type Pairing struct {
	Channel Channel
	Post    Post
}

// DistributionSession is the aggregate for one collect-and-dispatch run.
// It belongs to exactly one principal, lives in memory only, and enforces the
// phase machine:
//
//	collecting -> ready_to_send -> sending -> completed
//	collecting | ready_to_send  -> cancelled
//
// Transitions are monotonic; cancellation once sending has begun is rejected.
type DistributionSession struct {
	mu sync.Mutex

	ID          string
	PrincipalID int64
	ChatID      int64 // chat the initiating principal drives the flow from

	channels []Channel // snapshot taken at session start
	posts    []Post

	phase        SessionPhase
	startedAt    time.Time
	lastActivity time.Time
}

func NewDistributionSession(principalID, chatID int64, channels []Channel) (*DistributionSession, error) {
	if principalID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if len(channels) == 0 {
		return nil, domain.ErrNoChannels
	}
	snapshot := make([]Channel, len(channels))
	copy(snapshot, channels)
	now := time.Now().UTC()
	return &DistributionSession{
		ID:           uuid.NewString(),
		PrincipalID:  principalID,
		ChatID:       chatID,
		channels:     snapshot,
		posts:        make([]Post, 0, len(snapshot)),
		phase:        PhaseCollecting,
		startedAt:    now,
		lastActivity: now,
	}, nil
}

func (s *DistributionSession) RequiredCount() int { return len(s.channels) }

func (s *DistributionSession) Phase() SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *DistributionSession) CollectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// Collect appends post in arrival order while capacity remains. At capacity it
// reports overflow without mutating state, which guards against late or
// duplicate submissions racing the ready transition.
func (s *DistributionSession) Collect(post Post) CollectOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseCollecting || len(s.posts) >= len(s.channels) {
		return CollectOutcome{Result: CollectOverflow}
	}

	s.posts = append(s.posts, post)
	s.lastActivity = time.Now().UTC()

	if len(s.posts) == len(s.channels) {
		s.phase = PhaseReadyToSend
		return CollectOutcome{Result: CollectReady}
	}
	return CollectOutcome{Result: CollectNeedMore, Remaining: len(s.channels) - len(s.posts)}
}

// BeginSending moves ready_to_send into sending on the principal's explicit
// send-now decision.
func (s *DistributionSession) BeginSending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReadyToSend {
		return domain.ErrNotReady
	}
	s.phase = PhaseSending
	s.lastActivity = time.Now().UTC()
	return nil
}

// Complete marks the session completed once the dispatch pass has covered all
// pairings. Per-channel failures do not block completion.
func (s *DistributionSession) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseSending {
		s.phase = PhaseCompleted
	}
}

// Cancel is valid before sending begins. In-flight sends are not revocable, so
// cancelling a sending session is rejected rather than ignored.
func (s *DistributionSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseSending:
		return domain.ErrSendingInProgress
	case PhaseCompleted, PhaseCancelled:
		return domain.ErrNoSession
	}
	s.phase = PhaseCancelled
	return nil
}

// Pairings returns the positional post/channel associations for dispatch.
// Only meaningful once the session is ready (or sending).
func (s *DistributionSession) Pairings() []Pairing {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make([]Pairing, 0, len(s.posts))
	for i, post := range s.posts {
		pairs = append(pairs, Pairing{Channel: s.channels[i], Post: post})
	}
	return pairs
}

// Channels returns a copy of the snapshot taken at session start.
func (s *DistributionSession) Channels() []Channel {
	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Posts returns the collected posts in arrival order.
func (s *DistributionSession) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// IdleSince reports whether the session has seen no activity for at least ttl
// and is still in a cancellable phase. Used by the sweeper to bound memory
// held by abandoned sessions.
func (s *DistributionSession) IdleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseCollecting && s.phase != PhaseReadyToSend {
		return false
	}
	return now.Sub(s.lastActivity) >= ttl
}
