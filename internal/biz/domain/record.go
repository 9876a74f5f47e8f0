package domain

import "time"

// Category classifies a recorded message.
type Category string

const (
	// CategoryChannel is a broadcast-channel post.
	CategoryChannel Category = "channel"
	// CategoryAdmin is a group message authored by an admin or creator.
	CategoryAdmin Category = "admin"
	// CategoryPinned is a message surfaced by a pin marker.
	CategoryPinned Category = "pinned"
)

// MessageRecord is one append-only row in the message log. Records are
// never updated or deleted by this engine.
type MessageRecord struct {
	Time     time.Time
	Category Category
	ChatID   int64  // must reference a monitored chat row
	Sender   string // formatted sender label, empty when anonymous
	Body     string
}
