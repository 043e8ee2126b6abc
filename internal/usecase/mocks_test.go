//go:build !integration

package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/adapter"
	"telegram-channel-broadcast/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// memChannelRepo is a small in-memory implementation used by unit tests.
type memChannelRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Channel
	saveErr error // used by tests to simulate save failures
	listErr error
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{store: make(map[string]*model.Channel)}
}

func (m *memChannelRepo) Save(ctx context.Context, tx repository.Tx, ch *model.Channel) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[ch.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *ch
	m.store[ch.ID] = &cp
	return nil
}

func (m *memChannelRepo) FindByID(ctx context.Context, tx repository.Tx, channelID string) (*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.store[channelID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (m *memChannelRepo) ListActive(ctx context.Context, tx repository.Tx) ([]model.Channel, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Channel
	for _, ch := range m.store {
		if ch.Active {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (m *memChannelRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	list, err := m.ListActive(ctx, tx)
	return len(list), err
}

func (m *memChannelRepo) Delete(ctx context.Context, tx repository.Tx, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[channelID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, channelID)
	return nil
}

type memSudoRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.SudoUser
}

func newMemSudoRepo() *memSudoRepo {
	return &memSudoRepo{store: make(map[int64]*model.SudoUser)}
}

func (m *memSudoRepo) Save(ctx context.Context, tx repository.Tx, u *model.SudoUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *u
	m.store[u.UserID] = &cp
	return nil
}

func (m *memSudoRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID int64) (*model.SudoUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memSudoRepo) List(ctx context.Context, tx repository.Tx) ([]model.SudoUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.SudoUser
	for _, u := range m.store {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *memSudoRepo) Delete(ctx context.Context, tx repository.Tx, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, userID)
	return nil
}

type memScheduledRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.ScheduledPost
	saveErr error
}

func newMemScheduledRepo() *memScheduledRepo {
	return &memScheduledRepo{store: make(map[string]*model.ScheduledPost)}
}

func (m *memScheduledRepo) Save(ctx context.Context, tx repository.Tx, p *model.ScheduledPost) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memScheduledRepo) ListPending(ctx context.Context, tx repository.Tx, due time.Time) ([]model.ScheduledPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ScheduledPost
	for _, p := range m.store {
		if !p.Sent && !p.ScheduledFor.After(due) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return out, nil
}

func (m *memScheduledRepo) MarkSent(ctx context.Context, tx repository.Tx, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Sent {
		return domain.ErrNotFound
	}
	p.Sent = true
	p.SentAt = &sentAt
	return nil
}

// sentCall records one gateway send for ordering assertions.
type sentCall struct {
	ChannelID string
	Kind      model.PostKind
	Body      string
	FileID    string
}

// fakeGateway implements adapter.ChannelGateway and records every call.
// failOn maps channel ids to the error each send to them should return.
type fakeGateway struct {
	mu     sync.Mutex
	calls  []sentCall
	failOn map[string]error
}

var _ adapter.ChannelGateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failOn: make(map[string]error)}
}

func (g *fakeGateway) record(channelID string, kind model.PostKind, body, fileID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failOn[channelID]; ok {
		return err
	}
	g.calls = append(g.calls, sentCall{ChannelID: channelID, Kind: kind, Body: body, FileID: fileID})
	return nil
}

func (g *fakeGateway) sent() []sentCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentCall, len(g.calls))
	copy(out, g.calls)
	return out
}

func (g *fakeGateway) SendText(ctx context.Context, channelID string, text string) error {
	return g.record(channelID, model.PostText, text, "")
}

func (g *fakeGateway) SendPhoto(ctx context.Context, channelID string, fileID, caption string) error {
	return g.record(channelID, model.PostPhoto, caption, fileID)
}

func (g *fakeGateway) SendVideo(ctx context.Context, channelID string, fileID, caption string) error {
	return g.record(channelID, model.PostVideo, caption, fileID)
}

func (g *fakeGateway) SendDocument(ctx context.Context, channelID string, fileID, caption string) error {
	return g.record(channelID, model.PostDocument, caption, fileID)
}

func (g *fakeGateway) ResolveChannel(ctx context.Context, channelID string) (adapter.ChannelInfo, error) {
	return adapter.ChannelInfo{Title: "chan " + channelID, BotRole: "administrator"}, nil
}

// seedChannels registers n channels through the repo with strictly increasing
// AddedAt so ListActive ordering is deterministic.
func seedChannels(repo *memChannelRepo, ids ...string) []model.Channel {
	base := time.Now().UTC().Add(-time.Hour)
	out := make([]model.Channel, 0, len(ids))
	for i, id := range ids {
		ch := &model.Channel{
			ID:      id,
			Title:   "chan " + id,
			AddedBy: 1,
			AddedAt: base.Add(time.Duration(i) * time.Minute),
			Active:  true,
		}
		repo.store[ch.ID] = ch
		out = append(out, *ch)
	}
	return out
}
