// Package telegram adapts the Bot API transport to the engine's feed
// and directory interfaces. The Bot API has no joined-chat listing, so
// the adapter tracks membership from my_chat_member updates and the
// chats it sees messages in; everything engine-side stays behind the
// repo interfaces.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
)

// Client implements repo.Feed and repo.Directory over the Bot API.
type Client struct {
	b *bot.Bot

	mu      sync.Mutex
	handler func(u domain.Update, peers domain.Peers)
	joined  map[int64]domain.Chat
	pinned  map[pinKey]domain.Message
}

type pinKey struct {
	chatID    int64
	messageID int64
}

// NewClient builds the adapter. Handlers run synchronously so updates
// are consumed one at a time, in delivery order.
func NewClient(token string) (*Client, error) {
	c := &Client{
		joined: make(map[int64]domain.Chat),
		pinned: make(map[pinKey]domain.Message),
	}

	b, err := bot.New(token,
		bot.WithDefaultHandler(c.dispatch),
		bot.WithNotAsyncHandlers(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot client: %w", err)
	}
	c.b = b
	return c, nil
}

// OnUpdate registers the single consumer. Must be called before Start.
func (c *Client) OnUpdate(handler func(u domain.Update, peers domain.Peers)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Start begins long polling and blocks until ctx is done.
func (c *Client) Start(ctx context.Context) error {
	c.b.Start(ctx)
	return nil
}

func (c *Client) dispatch(ctx context.Context, _ *bot.Bot, u *models.Update) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler == nil {
		return
	}

	switch {
	case u.ChannelPost != nil:
		c.dispatchMessage(handler, u.ChannelPost)
	case u.Message != nil:
		c.dispatchMessage(handler, u.Message)
	case u.MyChatMember != nil:
		c.applyMembership(u.MyChatMember)
		handler(domain.ChatListChanged{ChatID: u.MyChatMember.Chat.ID}, domain.Peers{})
	}
}

func (c *Client) dispatchMessage(handler func(domain.Update, domain.Peers), msg *models.Message) {
	if msg.Chat.Type == models.ChatTypePrivate {
		return
	}
	c.trackChat(toChat(&msg.Chat))

	if msg.PinnedMessage != nil {
		marker := c.cachePinned(msg.Chat.ID, msg.PinnedMessage)
		handler(marker, c.peersFor(msg))
		return
	}

	switch msg.Chat.Type {
	case models.ChatTypeChannel, models.ChatTypeSupergroup:
		handler(domain.NewChannelMessage{
			ChatID:   msg.Chat.ID,
			SenderID: senderID(msg),
			Date:     int64(msg.Date),
			Body:     msg.Text,
			Service:  isService(msg),
		}, c.peersFor(msg))
	case models.ChatTypeGroup:
		handler(domain.NewGroupMessage{
			ChatID:   msg.Chat.ID,
			SenderID: senderID(msg),
			Date:     int64(msg.Date),
			Body:     msg.Text,
			Service:  isService(msg),
		}, c.peersFor(msg))
	}
}

// cachePinned stores the pinned message content so the engine's
// message lookup can resolve the marker; the Bot API cannot fetch
// arbitrary messages after the fact.
func (c *Client) cachePinned(chatID int64, pm *models.MaybeInaccessibleMessage) domain.PinnedMessageMarker {
	if pm.Message == nil {
		if pm.InaccessibleMessage == nil {
			return domain.PinnedMessageMarker{ChatID: chatID}
		}
		return domain.PinnedMessageMarker{
			ChatID:    chatID,
			MessageID: int64(pm.InaccessibleMessage.MessageID),
		}
	}

	full := pm.Message
	resolved := domain.Message{
		ID:       int64(full.ID),
		ChatID:   chatID,
		SenderID: senderID(full),
		Date:     int64(full.Date),
		Body:     full.Text,
	}
	c.mu.Lock()
	c.pinned[pinKey{chatID, resolved.ID}] = resolved
	c.mu.Unlock()

	return domain.PinnedMessageMarker{ChatID: chatID, MessageID: resolved.ID}
}

func (c *Client) applyMembership(m *models.ChatMemberUpdated) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch m.NewChatMember.Type {
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		delete(c.joined, m.Chat.ID)
	default:
		c.joined[m.Chat.ID] = toChat(&m.Chat)
	}
}

func (c *Client) trackChat(chat domain.Chat) {
	c.mu.Lock()
	c.joined[chat.ID] = chat
	c.mu.Unlock()
}

func (c *Client) peersFor(msg *models.Message) domain.Peers {
	peers := domain.Peers{
		Chats: map[int64]domain.Chat{msg.Chat.ID: toChat(&msg.Chat)},
		Users: map[int64]domain.User{},
	}
	if msg.From != nil {
		peers.Users[msg.From.ID] = domain.User{
			ID:        msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.Username,
		}
	}
	return peers
}

// ListJoinedChats returns the membership view accumulated from
// updates seen so far.
func (c *Client) ListJoinedChats(ctx context.Context) (map[int64]domain.Chat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]domain.Chat, len(c.joined))
	for id, chat := range c.joined {
		out[id] = chat
	}
	return out, nil
}

// ListParticipants serves the admin listing. The Bot API returns all
// administrators in one response, so page one carries everything and
// any later offset is the terminating empty page.
func (c *Client) ListParticipants(ctx context.Context, chatID int64, adminOnly bool, offset, limit int) ([]repo.Participant, error) {
	if offset > 0 {
		return nil, nil
	}
	if !adminOnly {
		return c.GetFullMembers(ctx, chatID)
	}

	members, err := c.b.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		return nil, wrapRateLimit(err)
	}
	participants := make([]repo.Participant, 0, len(members))
	for i := range members {
		participants = append(participants, toParticipant(&members[i]))
	}
	return participants, nil
}

// GetParticipant looks up a single chat member.
func (c *Client) GetParticipant(ctx context.Context, chatID, userID int64) (repo.Participant, error) {
	member, err := c.b.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return repo.Participant{}, wrapRateLimit(err)
	}
	return toParticipant(member), nil
}

// GetFullMembers approximates the basic-group member scan with the
// administrator listing: the Bot API exposes no full member list, and
// the only consumer of this call checks for admin standing.
func (c *Client) GetFullMembers(ctx context.Context, chatID int64) ([]repo.Participant, error) {
	members, err := c.b.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		return nil, wrapRateLimit(err)
	}
	participants := make([]repo.Participant, 0, len(members))
	for i := range members {
		participants = append(participants, toParticipant(&members[i]))
	}
	return participants, nil
}

// GetMessage resolves a pin marker from the adapter's pinned cache.
func (c *Client) GetMessage(ctx context.Context, chatID, messageID int64) (*domain.Message, error) {
	c.mu.Lock()
	msg, ok := c.pinned[pinKey{chatID, messageID}]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("message %d in chat %d is not resolvable", messageID, chatID)
	}
	return &msg, nil
}

// ResolveHandle resolves a public @handle to a chat.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (*domain.Chat, error) {
	info, err := c.b.GetChat(ctx, &bot.GetChatParams{ChatID: handle})
	if err != nil {
		return nil, wrapRateLimit(err)
	}
	chat := domain.Chat{
		ID:     info.ID,
		Title:  info.Title,
		Kind:   kindOf(info.Type),
		Handle: domain.FormatHandle(info.Username),
	}
	return &chat, nil
}

func toChat(chat *models.Chat) domain.Chat {
	return domain.Chat{
		ID:     chat.ID,
		Title:  chat.Title,
		Kind:   kindOf(chat.Type),
		Handle: domain.FormatHandle(chat.Username),
	}
}

func kindOf(t models.ChatType) domain.ChatKind {
	switch t {
	case models.ChatTypeChannel:
		return domain.KindChannel
	case models.ChatTypeSupergroup:
		return domain.KindSupergroup
	default:
		return domain.KindBasicGroup
	}
}

func toParticipant(m *models.ChatMember) repo.Participant {
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return repo.Participant{UserID: m.Owner.User.ID, Role: repo.RoleCreator}
	case models.ChatMemberTypeAdministrator:
		return repo.Participant{UserID: m.Administrator.User.ID, Role: repo.RoleAdmin}
	case models.ChatMemberTypeMember:
		return repo.Participant{UserID: m.Member.User.ID, Role: repo.RoleMember}
	case models.ChatMemberTypeRestricted:
		return repo.Participant{UserID: m.Restricted.User.ID, Role: repo.RoleMember}
	default:
		return repo.Participant{}
	}
}

func senderID(msg *models.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}

func isService(msg *models.Message) bool {
	return len(msg.NewChatMembers) > 0 ||
		msg.LeftChatMember != nil ||
		msg.GroupChatCreated ||
		msg.SupergroupChatCreated ||
		msg.ChannelChatCreated ||
		msg.NewChatTitle != ""
}

// wrapRateLimit converts the Bot API throttling error into the
// engine's retryable condition.
func wrapRateLimit(err error) error {
	var tmr *bot.TooManyRequestsError
	if errors.As(err, &tmr) {
		return &repo.RateLimited{RetryAfter: time.Duration(tmr.RetryAfter) * time.Second}
	}
	return err
}

var (
	_ repo.Feed      = (*Client)(nil)
	_ repo.Directory = (*Client)(nil)
)
