package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
)

// Mock implementations shared by the usecase tests.

type pageCall struct {
	ChatID int64
	Offset int
}

type fakeDirectory struct {
	mu sync.Mutex

	joined    map[int64]domain.Chat
	joinedErr error

	adminPages map[int64][][]repo.Participant
	pageCalls  []pageCall
	pagesErr   error
	// one pending rate-limit signal per chat, consumed on first call
	rateLimit map[int64]time.Duration

	participants     map[int64]map[int64]repo.Participant
	participantCalls int

	members map[int64][]repo.Participant

	messages map[int64]*domain.Message // keyed by message id
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		joined:       make(map[int64]domain.Chat),
		adminPages:   make(map[int64][][]repo.Participant),
		rateLimit:    make(map[int64]time.Duration),
		participants: make(map[int64]map[int64]repo.Participant),
		members:      make(map[int64][]repo.Participant),
		messages:     make(map[int64]*domain.Message),
	}
}

func (d *fakeDirectory) ListJoinedChats(ctx context.Context) (map[int64]domain.Chat, error) {
	if d.joinedErr != nil {
		return nil, d.joinedErr
	}
	out := make(map[int64]domain.Chat, len(d.joined))
	for id, c := range d.joined {
		out[id] = c
	}
	return out, nil
}

func (d *fakeDirectory) ListParticipants(ctx context.Context, chatID int64, adminOnly bool, offset, limit int) ([]repo.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pageCalls = append(d.pageCalls, pageCall{ChatID: chatID, Offset: offset})
	if wait, ok := d.rateLimit[chatID]; ok {
		delete(d.rateLimit, chatID)
		return nil, &repo.RateLimited{RetryAfter: wait}
	}
	if d.pagesErr != nil {
		return nil, d.pagesErr
	}

	pages := d.adminPages[chatID]
	idx := offset / limit
	if idx >= len(pages) {
		return nil, nil
	}
	return pages[idx], nil
}

func (d *fakeDirectory) GetParticipant(ctx context.Context, chatID, userID int64) (repo.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.participantCalls++
	if wait, ok := d.rateLimit[chatID]; ok {
		delete(d.rateLimit, chatID)
		return repo.Participant{}, &repo.RateLimited{RetryAfter: wait}
	}
	if p, ok := d.participants[chatID][userID]; ok {
		return p, nil
	}
	return repo.Participant{UserID: userID, Role: repo.RoleMember}, nil
}

func (d *fakeDirectory) GetFullMembers(ctx context.Context, chatID int64) ([]repo.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if wait, ok := d.rateLimit[chatID]; ok {
		delete(d.rateLimit, chatID)
		return nil, &repo.RateLimited{RetryAfter: wait}
	}
	return d.members[chatID], nil
}

func (d *fakeDirectory) GetMessage(ctx context.Context, chatID, messageID int64) (*domain.Message, error) {
	if msg, ok := d.messages[messageID]; ok {
		return msg, nil
	}
	return nil, fmt.Errorf("message %d not found", messageID)
}

func (d *fakeDirectory) ResolveHandle(ctx context.Context, handle string) (*domain.Chat, error) {
	for _, c := range d.joined {
		if c.Handle == handle {
			chat := c
			return &chat, nil
		}
	}
	return nil, repo.ErrDirectoryUnavailable
}

type fakeChatStore struct {
	rows      map[int64]domain.MonitoredChat
	inserts   int
	deletes   int
	listErr   error
	insertErr error
	deleteErr error
	// fail the Nth insert (1-based), 0 disables
	failInsertAt int
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{rows: make(map[int64]domain.MonitoredChat)}
}

func (s *fakeChatStore) ListMonitored(ctx context.Context) (map[int64]domain.MonitoredChat, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make(map[int64]domain.MonitoredChat, len(s.rows))
	for id, mc := range s.rows {
		out[id] = mc
	}
	return out, nil
}

func (s *fakeChatStore) InsertMonitored(ctx context.Context, chat domain.MonitoredChat) error {
	s.inserts++
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.failInsertAt > 0 && s.inserts == s.failInsertAt {
		return context.DeadlineExceeded
	}
	s.rows[chat.ID] = chat
	return nil
}

func (s *fakeChatStore) DeleteMonitored(ctx context.Context, id int64) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, id)
	return nil
}

type fakeMessageStore struct {
	records []domain.MessageRecord
	err     error
}

func (s *fakeMessageStore) Append(ctx context.Context, rec *domain.MessageRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *rec)
	return nil
}

type notification struct {
	Category domain.Category
	Chat     string
	Sender   string
	Body     string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, category domain.Category, chat, sender, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{Category: category, Chat: chat, Sender: sender, Body: body})
	return nil
}
