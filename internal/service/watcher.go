package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
	"github.com/zeksm/telegram-to-sql/internal/biz/usecase"
	"github.com/zeksm/telegram-to-sql/internal/errlog"
)

// Watcher orchestrates the engine: it bootstraps state in order
// (monitored load, joined refresh, reconcile, admin warm-up), then
// runs feed consumption and the admin-refresh cadence as two
// concurrent flows sharing the registry and admin cache.
type Watcher struct {
	registry   *usecase.Registry
	admins     *usecase.Admins
	classifier *usecase.Classifier
	feed       repo.Feed
	errs       *errlog.Logger

	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWatcher creates the control loop.
func NewWatcher(
	registry *usecase.Registry,
	admins *usecase.Admins,
	classifier *usecase.Classifier,
	feed repo.Feed,
	interval time.Duration,
	errs *errlog.Logger,
) *Watcher {
	return &Watcher{
		registry:   registry,
		admins:     admins,
		classifier: classifier,
		feed:       feed,
		errs:       errs,
		interval:   interval,
	}
}

// Bootstrap replays persisted and remote state in startup order. An
// error here means the process has no consistent view to start from.
func (w *Watcher) Bootstrap(ctx context.Context) error {
	if err := w.registry.LoadMonitored(ctx); err != nil {
		return fmt.Errorf("load monitored chats: %w", err)
	}
	if err := w.registry.RefreshJoined(ctx); err != nil {
		return fmt.Errorf("refresh joined chats: %w", err)
	}
	w.registry.Reconcile(ctx)

	if err := w.admins.RefreshAll(ctx, w.registry.Supergroups()); err != nil {
		// Warm-up failure leaves empty admin sets until the first
		// successful cycle; messages are still consumed.
		w.errs.Report("[Watcher] Admin warm-up failed", err)
	}
	return nil
}

// Start subscribes the classifier to the feed and launches feed
// consumption plus the refresh ticker. Returns immediately; the
// operator console keeps the foreground until the gate opens.
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.feed.OnUpdate(func(u domain.Update, peers domain.Peers) {
		w.classifier.Handle(w.ctx, u, peers)
	})

	w.wg.Add(2)
	go w.consumeLoop()
	go w.refreshLoop()

	fmt.Printf("[Watcher] Started with admin refresh interval %v\n", w.interval)
}

// Stop stops both flows and waits for them to drain.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	fmt.Println("[Watcher] Stopped")
}

// consumeLoop runs the blocking feed subscription.
func (w *Watcher) consumeLoop() {
	defer w.wg.Done()

	if err := w.feed.Start(w.ctx); err != nil {
		w.errs.Report("[Watcher] Feed stopped", err)
	}
}

// refreshLoop is the admin-refresh cadence.
func (w *Watcher) refreshLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			fmt.Println("[Watcher] Admin list refresh")
			if err := w.admins.RefreshAll(w.ctx, w.registry.Supergroups()); err != nil {
				w.errs.Report("[Watcher] Admin refresh cycle failed", err)
			}
		}
	}
}
