// Package syncer reconciles the in-memory board with the calendar API:
// a periodic full refetch replaces the store wholesale, and optimistic
// mutations are persisted fire-and-forget with refetch-on-failure rollback.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/ports"
)

// DefaultPollInterval matches the board's refresh cadence; interaction
// bursts are far faster than this, which is what makes last-refetch-wins
// an acceptable reconciliation rule.
const DefaultPollInterval = 30 * time.Second

// Notify surfaces a transient user-facing message (a rejected mutation
// that was rolled back). Never fatal.
type Notify func(msg string)

// Window produces the date range to fetch. The default is the Monday-to-
// Sunday week containing now.
type Window func(now time.Time) (startDate, endDate string)

// Adapter drives reconciliation for one Store.
type Adapter struct {
	store  *board.Store
	drags  *drag.Coordinator
	source ports.BoardSource
	writer ports.ScheduleWriter
	local  ports.SnapshotStore

	interval time.Duration
	window   Window
	notify   Notify

	mu      sync.Mutex
	pending *deferred

	// wg tracks in-flight persistence calls so tests and shutdown can
	// wait for them.
	wg sync.WaitGroup
}

type deferred struct {
	snap  domain.BoardSnapshot
	basis uint64
}

type Config struct {
	Store    *board.Store
	Drags    *drag.Coordinator
	Source   ports.BoardSource
	Writer   ports.ScheduleWriter
	Local    ports.SnapshotStore
	Interval time.Duration
	Window   Window
	Notify   Notify
}

func New(cfg Config) *Adapter {
	a := &Adapter{
		store:    cfg.Store,
		drags:    cfg.Drags,
		source:   cfg.Source,
		writer:   cfg.Writer,
		local:    cfg.Local,
		interval: cfg.Interval,
		window:   cfg.Window,
		notify:   cfg.Notify,
	}
	if a.interval <= 0 {
		a.interval = DefaultPollInterval
	}
	if a.window == nil {
		a.window = WeekWindow
	}
	if a.notify == nil {
		a.notify = func(msg string) { log.Printf("notice=%q", msg) }
	}
	return a
}

// WeekWindow returns the Monday..Sunday ISO dates of the week holding now.
func WeekWindow(now time.Time) (string, string) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := now.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format("2006-01-02"), sunday.Format("2006-01-02")
}

// Run performs the initial load and then polls until ctx is cancelled.
// When the initial fetch fails and a local snapshot exists, the board
// starts from the snapshot so the user still sees the last known state.
func (a *Adapter) Run(ctx context.Context) {
	if err := a.Refresh(ctx); err != nil {
		log.Printf("initial refresh failed err=%v", err)
		a.loadLocal(ctx)
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.wg.Wait()
			return
		case <-ticker.C:
			if err := a.Refresh(ctx); err != nil {
				log.Printf("poll refresh failed err=%v", err)
			}
		}
	}
}

// Refresh fetches the current window and applies it, unless a local
// mutation happened during the fetch (the snapshot would clobber a newer
// optimistic edit) or a drag is physically in progress (replacing the
// board mid-gesture invalidates the user's drop targets, so the snapshot
// is deferred and applied after the drop settles).
func (a *Adapter) Refresh(ctx context.Context) error {
	basis := a.store.Rev()

	snap, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	a.apply(snap, basis)
	a.saveLocal(ctx, snap)
	return nil
}

// ForceRefresh discards all optimistic state by fetching and replacing
// unconditionally. This is the rollback path after a rejected mutation.
func (a *Adapter) ForceRefresh(ctx context.Context) error {
	snap, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()

	a.store.Replace(snap)
	a.saveLocal(ctx, snap)
	return nil
}

// FlushPending applies a refresh deferred during a drag. The revision gate
// still holds: if the drop mutated the board, the stale snapshot is
// discarded and the next poll converges instead.
func (a *Adapter) FlushPending() {
	a.mu.Lock()
	p := a.pending
	a.pending = nil
	a.mu.Unlock()

	if p == nil || (a.drags != nil && a.drags.Active()) {
		return
	}
	if !a.store.ReplaceIfFresh(p.snap, p.basis) {
		log.Printf("deferred refresh superseded by local mutations")
	}
}

func (a *Adapter) fetch(ctx context.Context) (domain.BoardSnapshot, error) {
	start, end := a.window(time.Now())

	snap, err := a.source.FetchRange(ctx, start, end)
	if err != nil {
		return domain.BoardSnapshot{}, err
	}

	unscheduled, err := a.source.FetchUnscheduled(ctx)
	if err != nil {
		return domain.BoardSnapshot{}, err
	}
	snap.Orders = append(snap.Orders, unscheduled...)
	return snap, nil
}

func (a *Adapter) apply(snap domain.BoardSnapshot, basis uint64) {
	if a.drags != nil && a.drags.Active() {
		a.mu.Lock()
		a.pending = &deferred{snap: snap, basis: basis}
		a.mu.Unlock()
		return
	}
	if !a.store.ReplaceIfFresh(snap, basis) {
		log.Printf("refresh skipped: local mutations during fetch basis=%d rev=%d", basis, a.store.Rev())
	}
}

func (a *Adapter) loadLocal(ctx context.Context) {
	if a.local == nil {
		return
	}
	snap, ok, err := a.local.Load(ctx)
	if err != nil {
		log.Printf("local snapshot load failed err=%v", err)
		return
	}
	if !ok {
		return
	}
	a.store.Replace(snap)
	log.Printf("board restored from local snapshot fetched_at=%s", snap.FetchedAt.Format(time.RFC3339))
}

func (a *Adapter) saveLocal(ctx context.Context, snap domain.BoardSnapshot) {
	if a.local == nil {
		return
	}
	if err := a.local.Save(ctx, snap); err != nil {
		log.Printf("local snapshot save failed err=%v", err)
	}
}

// Wait blocks until all in-flight persistence calls complete.
func (a *Adapter) Wait() {
	a.wg.Wait()
}
