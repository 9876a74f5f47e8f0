package repo

import (
	"context"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
)

// Role is a participant's standing within a chat.
type Role int

const (
	RoleMember Role = iota
	RoleAdmin
	RoleCreator
)

// Admin reports whether the role carries administrator privilege.
func (r Role) Admin() bool {
	return r == RoleAdmin || r == RoleCreator
}

// Participant is one entry of a chat's member listing.
type Participant struct {
	UserID int64
	Role   Role
}

// Directory is the remote platform query surface. Every call may fail
// with a *RateLimited condition carrying the wait duration.
type Directory interface {
	// ListJoinedChats returns the full set of chats the account
	// currently belongs to.
	ListJoinedChats(ctx context.Context) (map[int64]domain.Chat, error)

	// ListParticipants returns one page of a chat's member listing,
	// optionally restricted to admins. An empty page ends pagination.
	ListParticipants(ctx context.Context, chatID int64, adminOnly bool, offset, limit int) ([]Participant, error)

	// GetParticipant looks up a single member of a channel/supergroup.
	GetParticipant(ctx context.Context, chatID, userID int64) (Participant, error)

	// GetFullMembers returns the complete member list of a basic group.
	GetFullMembers(ctx context.Context, chatID int64) ([]Participant, error)

	// GetMessage resolves a message by id, used for pin markers.
	GetMessage(ctx context.Context, chatID, messageID int64) (*domain.Message, error)

	// ResolveHandle resolves a public @handle to a chat.
	ResolveHandle(ctx context.Context, handle string) (*domain.Chat, error)
}

// Feed is the ordered update stream the classifier consumes. Updates
// are delivered one at a time, in order, with the per-dispatch side
// table resolving referenced ids.
type Feed interface {
	// OnUpdate registers the single consumer. Must be called before Start.
	OnUpdate(handler func(u domain.Update, peers domain.Peers))

	// Start begins delivering updates and blocks until ctx is done.
	Start(ctx context.Context) error
}
