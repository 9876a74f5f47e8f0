package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
)

// Admins resolves administrator identities. Supergroup admin sets are
// bulk-refreshed on a cadence and served from cache; channel and
// basic-group checks go to the platform on demand, per event.
type Admins struct {
	directory repo.Directory
	pageSize  int
	sleep     func(time.Duration)

	mu    sync.RWMutex
	cache map[int64]map[int64]struct{} // chat id -> admin user ids
}

// NewAdmins creates a resolver with the given pagination page size.
func NewAdmins(directory repo.Directory, pageSize int) *Admins {
	return &Admins{
		directory: directory,
		pageSize:  pageSize,
		sleep:     time.Sleep,
		cache:     make(map[int64]map[int64]struct{}),
	}
}

// RefreshAll rebuilds the admin set of every given supergroup. Each
// chat's set is replaced atomically once its pagination completes. A
// rate-limit signal sleeps the indicated duration and retries the same
// page; any other failure aborts the cycle, leaving the previous
// snapshot in effect for the chats not yet refreshed.
func (a *Admins) RefreshAll(ctx context.Context, chatIDs []int64) error {
	for _, chatID := range chatIDs {
		fmt.Printf("[Admins] Refreshing admins for %d\n", chatID)

		admins := make(map[int64]struct{})
		offset := 0
		for {
			page, err := a.directory.ListParticipants(ctx, chatID, true, offset, a.pageSize)
			if err != nil {
				if rl, ok := repo.AsRateLimited(err); ok {
					a.sleep(rl.RetryAfter)
					continue // same offset
				}
				return fmt.Errorf("list admins of %d: %w", chatID, err)
			}
			if len(page) == 0 {
				break
			}
			for _, p := range page {
				admins[p.UserID] = struct{}{}
			}
			offset += a.pageSize
		}

		a.mu.Lock()
		a.cache[chatID] = admins
		a.mu.Unlock()
	}
	return nil
}

// IsAdmin is the cached supergroup lookup against the last completed
// refresh. It never touches the platform.
func (a *Admins) IsAdmin(chatID, userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	admins, ok := a.cache[chatID]
	if !ok {
		return false
	}
	_, ok = admins[userID]
	return ok
}

// IsChannelAdmin checks a single channel/supergroup participant on
// demand. Not cached.
func (a *Admins) IsChannelAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	for {
		p, err := a.directory.GetParticipant(ctx, chatID, userID)
		if err != nil {
			if rl, ok := repo.AsRateLimited(err); ok {
				a.sleep(rl.RetryAfter)
				continue
			}
			return false, fmt.Errorf("get participant %d of %d: %w", userID, chatID, err)
		}
		return p.Role.Admin(), nil
	}
}

// IsGroupAdmin scans a basic group's full member list on demand. A
// sender absent from the list resolves to not-admin.
func (a *Admins) IsGroupAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	for {
		members, err := a.directory.GetFullMembers(ctx, chatID)
		if err != nil {
			if rl, ok := repo.AsRateLimited(err); ok {
				a.sleep(rl.RetryAfter)
				continue
			}
			return false, fmt.Errorf("get members of %d: %w", chatID, err)
		}
		for _, m := range members {
			if m.UserID == userID {
				return m.Role.Admin(), nil
			}
		}
		return false, nil
	}
}
