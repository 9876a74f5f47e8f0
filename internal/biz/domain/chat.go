package domain

// ChatKind distinguishes the platform chat flavors, which carry
// different admin semantics.
type ChatKind int

const (
	// KindChannel is a broadcast channel: only admins can post, so
	// every message is recorded without an admin check.
	KindChannel ChatKind = iota
	// KindSupergroup is a large group with channel-like admin roles.
	KindSupergroup
	// KindBasicGroup is a small group without the channel machinery.
	KindBasicGroup
)

func (k ChatKind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindSupergroup:
		return "supergroup"
	case KindBasicGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Chat represents a chat the account has joined. It exists in memory
// only while the account is a member; nothing here is persisted.
type Chat struct {
	ID     int64
	Title  string
	Kind   ChatKind
	Handle string // "@name", or "None" when the chat has no public handle
}

// Label formats the chat for console output and notifications.
func (c *Chat) Label() string {
	return c.Title + "(" + c.Handle + ")"
}

// MonitoredChat is the persisted reference to a joined chat selected
// for logging. Title and Handle are snapshots taken at add time so the
// console can list entries without a platform round trip.
type MonitoredChat struct {
	ID     int64
	Title  string
	Handle string
}

// Label formats the monitored chat for console output.
func (c *MonitoredChat) Label() string {
	return c.Title + "(" + c.Handle + ")"
}

// FormatHandle normalizes a platform username into the stored handle
// form: "@name", or the literal "None" when the chat has none.
func FormatHandle(username string) string {
	if username == "" {
		return "None"
	}
	return "@" + username
}
