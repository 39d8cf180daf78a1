package toast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults applied by NewManager when Config leaves them zero.
const (
	// DefaultMaxToasts caps the number of concurrently visible toasts.
	DefaultMaxToasts = 5

	// DefaultDuration is the auto-dismiss delay for toasts that do not set
	// an explicit duration.
	DefaultDuration = 4 * time.Second
)

// Config contains configuration for creating a Manager.
type Config struct {
	// MaxToasts caps the active collection; the oldest entry is evicted
	// when a Show call would exceed it. Defaults to DefaultMaxToasts.
	MaxToasts int

	// DefaultDuration is applied when Show is called without WithDuration.
	// Defaults to DefaultDuration.
	DefaultDuration time.Duration

	// Logger for debug output. Defaults to slog.Default().
	Logger *slog.Logger

	// AfterFunc schedules the auto-dismiss callbacks. Defaults to
	// time.AfterFunc. Tests inject a recording implementation to advance
	// logical time deterministically.
	AfterFunc func(d time.Duration, fn func()) *time.Timer
}

// entry pairs an active toast with its pending timer handle, if any.
type entry struct {
	toast Toast
	timer *time.Timer
}

// subscriber serializes delivery to one callback. seen holds the newest
// snapshot sequence delivered so far; a delivery racing a newer one is
// dropped instead of arriving out of order.
type subscriber struct {
	fn func([]Toast)

	mu   sync.Mutex
	seen uint64
}

func (s *subscriber) deliver(seq uint64, snapshot []Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.seen {
		return
	}
	s.seen = seq
	s.fn(snapshot)
}

// Manager owns the active toast collection. It is safe for concurrent use;
// mutations are serialized and applied in call order. A Dismiss that races
// the same toast's timer resolves to a single removal, with the loser a
// no-op.
type Manager struct {
	logger    *slog.Logger
	afterFunc func(d time.Duration, fn func()) *time.Timer
	maxToasts int
	defaults  time.Duration

	mu      sync.Mutex
	entries []entry
	subs    map[uint64]*subscriber
	nextSub uint64
	seq     uint64
	closed  bool
}

// NewManager creates a Manager from cfg, applying defaults for zero fields.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	afterFunc := cfg.AfterFunc
	if afterFunc == nil {
		afterFunc = time.AfterFunc
	}
	maxToasts := cfg.MaxToasts
	if maxToasts <= 0 {
		maxToasts = DefaultMaxToasts
	}
	defaults := cfg.DefaultDuration
	if defaults <= 0 {
		defaults = DefaultDuration
	}
	return &Manager{
		logger:    logger,
		afterFunc: afterFunc,
		maxToasts: maxToasts,
		defaults:  defaults,
		subs:      make(map[uint64]*subscriber),
	}
}

// Show appends a new toast and returns its id so callers can dismiss it
// explicitly later. If the append pushes the collection over MaxToasts the
// oldest entry is evicted and its timer cancelled; eviction is silent, not
// an error. A positive duration arms a one-shot auto-dismiss timer; zero
// keeps the toast until dismissed.
func (m *Manager) Show(message string, opts ...Option) string {
	o := showOptions{
		severity: SeverityInfo,
		duration: m.defaults,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.severity.valid() {
		o.severity = SeverityInfo
	}
	if o.duration < 0 {
		o.duration = 0
	}

	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  o.severity,
		CreatedAt: time.Now(),
		Duration:  o.duration,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return t.ID
	}

	e := entry{toast: t}
	if t.Duration > 0 {
		// Capture the id, not the entry: by the time the timer fires the
		// slice may have been reshuffled by other mutations.
		id := t.ID
		e.timer = m.afterFunc(t.Duration, func() {
			m.Dismiss(id)
		})
	}
	m.entries = append(m.entries, e)

	var evicted Toast
	var hadEviction bool
	if len(m.entries) > m.maxToasts {
		old := m.entries[0]
		if old.timer != nil {
			old.timer.Stop()
		}
		m.entries = m.entries[1:]
		evicted, hadEviction = old.toast, true
	}
	seq, snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	if hadEviction {
		m.logger.Debug("toast evicted",
			"id", evicted.ID,
			"severity", evicted.Severity,
		)
	}
	m.logger.Debug("toast shown",
		"id", t.ID,
		"severity", t.Severity,
		"duration", t.Duration,
	)
	notify(seq, subs, snapshot)
	return t.ID
}

// Dismiss removes the toast with the given id and cancels its pending timer.
// Unknown ids are a no-op: the toast may already have expired, been evicted,
// or been dismissed elsewhere.
func (m *Manager) Dismiss(id string) {
	m.mu.Lock()
	idx := -1
	for i, e := range m.entries {
		if e.toast.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	if t := m.entries[idx].timer; t != nil {
		t.Stop()
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	seq, snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("toast dismissed", "id", id)
	notify(seq, subs, snapshot)
}

// DismissAll removes every active toast and cancels every pending timer.
func (m *Manager) DismissAll() {
	m.mu.Lock()
	if len(m.entries) == 0 {
		m.mu.Unlock()
		return
	}
	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	count := len(m.entries)
	m.entries = nil
	seq, snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("all toasts dismissed", "count", count)
	notify(seq, subs, snapshot)
}

// Toasts returns a copy of the active collection in insertion order, oldest
// first.
func (m *Manager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.toast
	}
	return out
}

// Subscribe registers fn to be called with a fresh snapshot after every
// mutation. The returned cancel function removes the registration; it is
// safe to call more than once. Callbacks run outside the manager's lock and
// may call back into the Manager. Deliveries to one subscriber never go
// backwards: when concurrent mutations race, the older snapshot is dropped.
func (m *Manager) Subscribe(fn func([]Toast)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = &subscriber{fn: fn, seen: m.seq}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Close cancels every pending timer and drops all subscribers. Subsequent
// Show calls are ignored. Close is intended for application shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	m.entries = nil
	m.subs = map[uint64]*subscriber{}
}

// snapshotLocked stamps a new snapshot sequence and copies the active toasts
// and current subscribers. Callers must hold m.mu; every call marks one
// mutation.
func (m *Manager) snapshotLocked() (uint64, []Toast, []*subscriber) {
	m.seq++
	snapshot := make([]Toast, len(m.entries))
	for i, e := range m.entries {
		snapshot[i] = e.toast
	}
	subs := make([]*subscriber, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	return m.seq, snapshot, subs
}

// notify delivers the snapshot to each subscriber. Per-subscriber sequence
// tracking inside deliver keeps concurrent notifications from arriving out
// of order.
func notify(seq uint64, subs []*subscriber, snapshot []Toast) {
	for _, s := range subs {
		s.deliver(seq, snapshot)
	}
}
