package repo

import (
	"context"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
)

// ChatStore persists the monitored-chat subset.
type ChatStore interface {
	// ListMonitored reads all persisted monitored chats.
	ListMonitored(ctx context.Context) (map[int64]domain.MonitoredChat, error)

	// InsertMonitored adds one monitored chat row.
	InsertMonitored(ctx context.Context, chat domain.MonitoredChat) error

	// DeleteMonitored removes one monitored chat row. Existing message
	// history referencing the id is retained.
	DeleteMonitored(ctx context.Context, id int64) error
}

// MessageStore appends classified events to the message log.
type MessageStore interface {
	// Append inserts one record. The referenced chat id must exist in
	// the monitored-chat table; the storage engine enforces this.
	Append(ctx context.Context, rec *domain.MessageRecord) error
}

// Notifier forwards a summary of a classified event, best effort.
type Notifier interface {
	// Notify posts a human-readable summary. sender is empty when the
	// "from" clause should be omitted.
	Notify(ctx context.Context, category domain.Category, chat, sender, body string) error
}
