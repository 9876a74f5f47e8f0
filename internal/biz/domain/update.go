package domain

// Update is the tagged-variant type for feed events. The classifier
// matches the concrete variants below exhaustively; anything else is
// ignored on purpose rather than silently.
type Update interface {
	updateTag()
}

// NewChannelMessage is a post in a broadcast channel or a supergroup
// (the chat kind is resolved through the Peers side table).
type NewChannelMessage struct {
	ChatID   int64
	SenderID int64 // 0 when the post carries no sender
	Date     int64 // unix timestamp
	Body     string
	Service  bool // join/leave/service marker, never classified
}

// NewGroupMessage is a message in a basic (non-super) group.
type NewGroupMessage struct {
	ChatID   int64
	SenderID int64
	Date     int64
	Body     string
	Service  bool
}

// PinnedMessageMarker signals that a message was pinned. It carries
// only ids; the classifier resolves the full message via the feed's
// message-lookup capability.
type PinnedMessageMarker struct {
	ChatID    int64
	MessageID int64 // 0 means a pin was cleared, ignored
}

// ChatListChanged signals a membership change: the account joined or
// left a chat. Processed regardless of the listening gate.
type ChatListChanged struct {
	ChatID int64
}

func (NewChannelMessage) updateTag()   {}
func (NewGroupMessage) updateTag()     {}
func (PinnedMessageMarker) updateTag() {}
func (ChatListChanged) updateTag()     {}

// Peers is the side table supplied with each dispatch, resolving the
// ids an update references to chat and user metadata.
type Peers struct {
	Chats map[int64]Chat
	Users map[int64]User
}

// Message is a fully resolved message, as returned by the feed's
// message lookup (used for pinned-message resolution).
type Message struct {
	ID       int64
	ChatID   int64
	SenderID int64 // 0 when anonymous
	Date     int64
	Body     string
}
