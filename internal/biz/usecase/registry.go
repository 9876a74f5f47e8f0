package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
	"github.com/zeksm/telegram-to-sql/internal/errlog"
)

// Registry owns the two chat sets: the chats the account belongs to
// (rebuilt from the platform, never persisted) and the monitored
// subset (persisted, mutated by the operator or by reconciliation).
//
// Consistency rule: a chat can only be monitored while currently
// joined. Reconcile enforces it after every joined-set refresh.
type Registry struct {
	mu        sync.Mutex
	directory repo.Directory
	store     repo.ChatStore
	errs      *errlog.Logger

	joined    map[int64]domain.Chat
	monitored map[int64]domain.MonitoredChat
}

// NewRegistry creates a registry. Both sets start empty until
// RefreshJoined and LoadMonitored run.
func NewRegistry(directory repo.Directory, store repo.ChatStore, errs *errlog.Logger) *Registry {
	return &Registry{
		directory: directory,
		store:     store,
		errs:      errs,
		joined:    make(map[int64]domain.Chat),
		monitored: make(map[int64]domain.MonitoredChat),
	}
}

// RefreshJoined replaces the joined set from the remote directory.
// On failure the stale set stays in effect.
func (r *Registry) RefreshJoined(ctx context.Context) error {
	chats, err := r.directory.ListJoinedChats(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", repo.ErrDirectoryUnavailable, err)
	}

	r.mu.Lock()
	r.joined = chats
	r.mu.Unlock()
	return nil
}

// LoadMonitored loads the persisted monitored subset.
func (r *Registry) LoadMonitored(ctx context.Context) error {
	monitored, err := r.store.ListMonitored(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
	}

	r.mu.Lock()
	r.monitored = monitored
	r.mu.Unlock()
	return nil
}

// Reconcile evicts monitored entries that are no longer joined. The
// storage row is removed first; the in-memory entry follows only on
// success. A storage failure abandons the rest of the pass.
func (r *Registry) Reconcile(ctx context.Context) {
	r.mu.Lock()
	var stale []int64
	for id := range r.monitored {
		if _, ok := r.joined[id]; !ok {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stale {
		if err := r.store.DeleteMonitored(ctx, id); err != nil {
			r.errs.Report("[Registry] Failed to evict chat no longer joined", err)
			return
		}
		r.mu.Lock()
		delete(r.monitored, id)
		r.mu.Unlock()
		fmt.Printf("[Registry] Stopped monitoring %d (no longer joined)\n", id)
	}
}

// Add resolves each token to a joined chat id, persists it and adds it
// to the monitored set. Returns one report line per token. The first
// storage failure abandons the remaining tokens of the batch.
func (r *Registry) Add(ctx context.Context, tokens []string) []string {
	var report []string
	for _, token := range tokens {
		id, msg := r.resolveToken(token)
		if msg != "" {
			report = append(report, msg)
			continue
		}

		r.mu.Lock()
		chat, joined := r.joined[id]
		_, already := r.monitored[id]
		r.mu.Unlock()

		if !joined {
			report = append(report, "Not joined: "+token)
			continue
		}
		if already {
			report = append(report, "Already monitored: "+token)
			continue
		}

		mc := domain.MonitoredChat{ID: chat.ID, Title: chat.Title, Handle: chat.Handle}
		if err := r.store.InsertMonitored(ctx, mc); err != nil {
			r.errs.Report("[Registry] Failed to persist monitored chat "+token, err)
			return report
		}
		r.mu.Lock()
		r.monitored[id] = mc
		r.mu.Unlock()
		report = append(report, "Now monitoring: "+mc.Label())
	}
	return report
}

// Remove takes each token out of the monitored set, storage first.
func (r *Registry) Remove(ctx context.Context, tokens []string) []string {
	var report []string
	for _, token := range tokens {
		id, msg := r.resolveToken(token)
		if msg != "" {
			report = append(report, msg)
			continue
		}

		r.mu.Lock()
		mc, monitored := r.monitored[id]
		r.mu.Unlock()

		if !monitored {
			report = append(report, "Not monitored: "+token)
			continue
		}

		if err := r.store.DeleteMonitored(ctx, id); err != nil {
			r.errs.Report("[Registry] Failed to remove monitored chat "+token, err)
			return report
		}
		r.mu.Lock()
		delete(r.monitored, id)
		r.mu.Unlock()
		report = append(report, "Stopped monitoring: "+mc.Label())
	}
	return report
}

// resolveToken turns an id or @handle token into a joined chat id.
// The second return is a rejection message, empty on success.
func (r *Registry) resolveToken(token string) (int64, string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "Empty token"
	}

	if strings.HasPrefix(token, "@") {
		r.mu.Lock()
		defer r.mu.Unlock()
		for id, chat := range r.joined {
			if chat.Handle == token {
				return id, ""
			}
		}
		return 0, "Unknown handle: " + token
	}

	// Group and channel ids from the directory are negative, so sign
	// says nothing about validity; the joined-set lookup rejects
	// unknown ids.
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, "Invalid format: " + token
	}
	return id, ""
}

// IsMonitored reports whether the chat id is currently monitored.
func (r *Registry) IsMonitored(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.monitored[id]
	return ok
}

// JoinedChat returns the joined-set entry for the chat id.
func (r *Registry) JoinedChat(id int64) (domain.Chat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.joined[id]
	return chat, ok
}

// Joined returns a copy of the joined set for display.
func (r *Registry) Joined() map[int64]domain.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]domain.Chat, len(r.joined))
	for id, c := range r.joined {
		out[id] = c
	}
	return out
}

// Monitored returns a copy of the monitored set for display.
func (r *Registry) Monitored() map[int64]domain.MonitoredChat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]domain.MonitoredChat, len(r.monitored))
	for id, c := range r.monitored {
		out[id] = c
	}
	return out
}

// Supergroups returns the ids of joined supergroup chats, sorted for
// a stable refresh order.
func (r *Registry) Supergroups() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, c := range r.joined {
		if c.Kind == domain.KindSupergroup {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
