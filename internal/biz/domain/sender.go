package domain

// SenderInfo is the per-event view of a message author. A zero
// SenderInfo means the update carried no sender (anonymous or
// channel-authored); records and notifications then omit the
// "from" clause.
type SenderInfo struct {
	ID     int64
	Name   string
	Handle string // "@name" or "None"
}

// IsZero reports whether the update carried no sender.
func (s *SenderInfo) IsZero() bool {
	return s.ID == 0
}

// Label formats the sender for records and notifications.
func (s *SenderInfo) Label() string {
	if s.IsZero() {
		return ""
	}
	return s.Name + "(" + s.Handle + ")"
}

// User is the side-table entry for a platform user, as delivered
// alongside an update dispatch.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// SenderInfo derives the per-event sender view from a user entry.
func (u *User) SenderInfo() SenderInfo {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return SenderInfo{
		ID:     u.ID,
		Name:   name,
		Handle: FormatHandle(u.Username),
	}
}
