package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
	"github.com/zeksm/telegram-to-sql/internal/errlog"
)

// Classifier consumes one update at a time, decides whether it is
// interesting (monitored chat, admin rules per chat kind) and
// dispatches the survivors to the message log and the notifier.
//
// Message updates are dropped until the listening gate opens;
// membership changes flow through regardless, keeping the registry
// fresh while the operator is still at the console.
type Classifier struct {
	registry  *Registry
	admins    *Admins
	directory repo.Directory
	store     repo.MessageStore
	notifier  repo.Notifier
	errs      *errlog.Logger
	sleep     func(time.Duration)

	listening atomic.Bool
}

// NewClassifier wires the classification core.
func NewClassifier(
	registry *Registry,
	admins *Admins,
	directory repo.Directory,
	store repo.MessageStore,
	notifier repo.Notifier,
	errs *errlog.Logger,
) *Classifier {
	return &Classifier{
		registry:  registry,
		admins:    admins,
		directory: directory,
		store:     store,
		notifier:  notifier,
		errs:      errs,
		sleep:     time.Sleep,
	}
}

// Enable opens the listening gate. The transition happens once and is
// never reverted.
func (c *Classifier) Enable() {
	c.listening.Store(true)
}

// Listening reports the gate state.
func (c *Classifier) Listening() bool {
	return c.listening.Load()
}

// Handle classifies one update. The feed delivers in order, one at a
// time; any remote lookups issued here block that single flow.
func (c *Classifier) Handle(ctx context.Context, u domain.Update, peers domain.Peers) {
	switch u := u.(type) {
	case domain.ChatListChanged:
		if err := c.registry.RefreshJoined(ctx); err != nil {
			c.errs.Report("[Classifier] Failed to refresh joined chats", err)
			return
		}
		c.registry.Reconcile(ctx)

	case domain.NewChannelMessage:
		if !c.listening.Load() || u.Service {
			return
		}
		c.handleChannelMessage(ctx, u, peers)

	case domain.NewGroupMessage:
		if !c.listening.Load() || u.Service {
			return
		}
		c.handleGroupMessage(ctx, u, peers)

	case domain.PinnedMessageMarker:
		if !c.listening.Load() || u.MessageID == 0 {
			return
		}
		c.handlePinned(ctx, u, peers)

	default:
		// Unrecognized update kinds are ignored on purpose.
	}
}

func (c *Classifier) handleChannelMessage(ctx context.Context, u domain.NewChannelMessage, peers domain.Peers) {
	// The monitored filter runs before any admin resolution so an
	// uninteresting chat never costs a remote query.
	if !c.registry.IsMonitored(u.ChatID) {
		return
	}
	chat, kindKnown := c.chatInfo(peers, u.ChatID)
	if !kindKnown {
		// Supergroup and channel rules differ, so a message whose
		// chat kind cannot be established is dropped rather than
		// recorded under the wrong rules.
		fmt.Printf("[Classifier] Message for chat %d dropped, chat kind unknown\n", u.ChatID)
		return
	}
	sender := resolveSender(peers, u.SenderID)

	if chat.Kind == domain.KindSupergroup {
		if sender.IsZero() {
			fmt.Printf("[Classifier] Supergroup message without sender dropped - %s: %s\n", chat.Label(), u.Body)
			return
		}
		admin, err := c.admins.IsChannelAdmin(ctx, u.ChatID, sender.ID)
		if err != nil {
			c.errs.Report("[Classifier] Admin check failed", err)
			return
		}
		if !admin {
			fmt.Printf("[Classifier] Supergroup message not from admin - %s - Sender: %s: %s\n", chat.Label(), sender.Label(), u.Body)
			return
		}
		fmt.Printf("[Classifier] Supergroup admin message - %s - Sender: %s: %s\n", chat.Label(), sender.Label(), u.Body)
		c.record(ctx, u.Date, domain.CategoryAdmin, &chat, sender.Label(), u.Body)
		c.notify(ctx, domain.CategoryAdmin, &chat, sender.Label(), u.Body)
		return
	}

	fmt.Printf("[Classifier] Channel message - %s: %s\n", chat.Label(), u.Body)
	c.record(ctx, u.Date, domain.CategoryChannel, &chat, sender.Label(), u.Body)
	// Channel posts notify without a sender clause even when one is
	// known; only the record keeps it.
	c.notify(ctx, domain.CategoryChannel, &chat, "", u.Body)
}

func (c *Classifier) handleGroupMessage(ctx context.Context, u domain.NewGroupMessage, peers domain.Peers) {
	if !c.registry.IsMonitored(u.ChatID) {
		return
	}
	chat, _ := c.chatInfo(peers, u.ChatID)
	sender := resolveSender(peers, u.SenderID)

	admin, err := c.admins.IsGroupAdmin(ctx, u.ChatID, sender.ID)
	if err != nil {
		c.errs.Report("[Classifier] Group admin check failed", err)
		return
	}
	if !admin {
		fmt.Printf("[Classifier] Group message not from admin - %s - Sender: %s: %s\n", chat.Label(), sender.Label(), u.Body)
		return
	}
	fmt.Printf("[Classifier] Group admin message - %s - Sender: %s: %s\n", chat.Label(), sender.Label(), u.Body)
	c.record(ctx, u.Date, domain.CategoryAdmin, &chat, sender.Label(), u.Body)
	c.notify(ctx, domain.CategoryAdmin, &chat, sender.Label(), u.Body)
}

func (c *Classifier) handlePinned(ctx context.Context, u domain.PinnedMessageMarker, peers domain.Peers) {
	if !c.registry.IsMonitored(u.ChatID) {
		return
	}
	chat, _ := c.chatInfo(peers, u.ChatID)

	msg, err := c.getMessage(ctx, u.ChatID, u.MessageID)
	if err != nil {
		c.errs.Report("[Classifier] Failed to resolve pinned message", err)
		return
	}
	sender := resolveSender(peers, msg.SenderID)

	fmt.Printf("[Classifier] New pinned message - %s - Sender: %s: %s\n", chat.Label(), sender.Label(), msg.Body)
	c.record(ctx, msg.Date, domain.CategoryPinned, &chat, sender.Label(), msg.Body)
	c.notify(ctx, domain.CategoryPinned, &chat, sender.Label(), msg.Body)
}

// getMessage resolves a message by id, honoring the rate-limit
// sleep-and-retry condition like every other remote call.
func (c *Classifier) getMessage(ctx context.Context, chatID, messageID int64) (*domain.Message, error) {
	for {
		msg, err := c.directory.GetMessage(ctx, chatID, messageID)
		if err != nil {
			if rl, ok := repo.AsRateLimited(err); ok {
				c.sleep(rl.RetryAfter)
				continue
			}
			return nil, err
		}
		return msg, nil
	}
}

func (c *Classifier) record(ctx context.Context, date int64, cat domain.Category, chat *domain.Chat, sender, body string) {
	rec := &domain.MessageRecord{
		Time:     time.Unix(date, 0),
		Category: cat,
		ChatID:   chat.ID,
		Sender:   sender,
		Body:     body,
	}
	if err := c.store.Append(ctx, rec); err != nil {
		c.errs.Report("[Classifier] Failed to record message", err)
	}
}

func (c *Classifier) notify(ctx context.Context, cat domain.Category, chat *domain.Chat, sender, body string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, cat, chat.Label(), sender, body); err != nil {
		c.errs.Report("[Classifier] Failed to send notification", err)
	}
}

// chatInfo resolves chat metadata from the dispatch side table, then
// the joined set. Both carry the chat kind. The monitored snapshot
// taken at add time does not, so the second return reports whether
// the kind is trustworthy; callers whose rules branch on kind must
// drop the update when it is not.
func (c *Classifier) chatInfo(peers domain.Peers, chatID int64) (domain.Chat, bool) {
	if chat, ok := peers.Chats[chatID]; ok {
		return chat, true
	}
	if chat, ok := c.registry.JoinedChat(chatID); ok {
		return chat, true
	}
	if mc, ok := c.registry.Monitored()[chatID]; ok {
		return domain.Chat{ID: mc.ID, Title: mc.Title, Handle: mc.Handle}, false
	}
	return domain.Chat{ID: chatID, Handle: "None"}, false
}

func resolveSender(peers domain.Peers, senderID int64) domain.SenderInfo {
	if senderID == 0 {
		return domain.SenderInfo{}
	}
	if user, ok := peers.Users[senderID]; ok {
		return user.SenderInfo()
	}
	return domain.SenderInfo{ID: senderID, Name: fmt.Sprintf("user %d", senderID), Handle: "None"}
}
