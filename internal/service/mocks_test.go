package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
)

// staticDirectory serves a fixed joined set and admin listing.
type staticDirectory struct {
	mu         sync.Mutex
	joined     map[int64]domain.Chat
	admins     map[int64][]repo.Participant
	pageCalls  int
	refreshErr error
}

func (d *staticDirectory) ListJoinedChats(ctx context.Context) (map[int64]domain.Chat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refreshErr != nil {
		return nil, d.refreshErr
	}
	out := make(map[int64]domain.Chat, len(d.joined))
	for id, c := range d.joined {
		out[id] = c
	}
	return out, nil
}

func (d *staticDirectory) ListParticipants(ctx context.Context, chatID int64, adminOnly bool, offset, limit int) ([]repo.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pageCalls++
	if offset > 0 {
		return nil, nil
	}
	return d.admins[chatID], nil
}

func (d *staticDirectory) GetParticipant(ctx context.Context, chatID, userID int64) (repo.Participant, error) {
	for _, p := range d.admins[chatID] {
		if p.UserID == userID {
			return p, nil
		}
	}
	return repo.Participant{UserID: userID, Role: repo.RoleMember}, nil
}

func (d *staticDirectory) GetFullMembers(ctx context.Context, chatID int64) ([]repo.Participant, error) {
	return d.admins[chatID], nil
}

func (d *staticDirectory) GetMessage(ctx context.Context, chatID, messageID int64) (*domain.Message, error) {
	return nil, fmt.Errorf("message %d not found", messageID)
}

func (d *staticDirectory) ResolveHandle(ctx context.Context, handle string) (*domain.Chat, error) {
	return nil, fmt.Errorf("unknown handle %s", handle)
}

// memoryChatStore keeps monitored rows in a map.
type memoryChatStore struct {
	mu   sync.Mutex
	rows map[int64]domain.MonitoredChat
}

func (s *memoryChatStore) ListMonitored(ctx context.Context) (map[int64]domain.MonitoredChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]domain.MonitoredChat, len(s.rows))
	for id, mc := range s.rows {
		out[id] = mc
	}
	return out, nil
}

func (s *memoryChatStore) InsertMonitored(ctx context.Context, chat domain.MonitoredChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[chat.ID] = chat
	return nil
}

func (s *memoryChatStore) DeleteMonitored(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// scriptedFeed replays queued updates to the registered handler when
// Start runs, then blocks until ctx is done.
type scriptedFeed struct {
	mu      sync.Mutex
	handler func(u domain.Update, peers domain.Peers)
	queue   []feedEvent
	started chan struct{}
}

type feedEvent struct {
	update domain.Update
	peers  domain.Peers
}

func newScriptedFeed() *scriptedFeed {
	return &scriptedFeed{started: make(chan struct{})}
}

func (f *scriptedFeed) OnUpdate(handler func(u domain.Update, peers domain.Peers)) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

func (f *scriptedFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	handler := f.handler
	queue := f.queue
	f.mu.Unlock()

	for _, ev := range queue {
		handler(ev.update, ev.peers)
	}
	close(f.started)
	<-ctx.Done()
	return nil
}

var (
	_ repo.Directory = (*staticDirectory)(nil)
	_ repo.ChatStore = (*memoryChatStore)(nil)
	_ repo.Feed      = (*scriptedFeed)(nil)
)
