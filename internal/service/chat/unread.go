package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// UnreadTracker decides when a change in the agent-side unread total should
// alert an agent: only when the total rises from a nonzero baseline. The
// first rise from zero, such as the backlog seen on startup, stays silent.
type UnreadTracker struct {
	mu       sync.Mutex
	previous int
}

// Observe records total and reports whether it warrants a notification.
func (t *UnreadTracker) Observe(total int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	notify := total > t.previous && t.previous != 0
	t.previous = total
	return notify
}

func (t *UnreadTracker) Previous() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous
}

// UnreadNotifier receives every change of the unread total.
type UnreadNotifier interface {
	NotifyUnreadTotal(ctx context.Context, total int, notify bool) error
}

type NotifierFunc func(ctx context.Context, total int, notify bool) error

func (f NotifierFunc) NotifyUnreadTotal(ctx context.Context, total int, notify bool) error {
	return f(ctx, total, notify)
}

// SessionLister is the read side the monitor seeds itself from.
type SessionLister interface {
	ListSessions(ctx context.Context, statuses []model.ChatStatus) (ListSessionsResult, error)
}

// UnreadMonitor keeps the sum of unreadByAgent over sessions whose status is
// in its filter, fed by the session event stream.
type UnreadMonitor struct {
	lister   SessionLister
	notifier UnreadNotifier
	filter   map[model.ChatStatus]bool
	statuses []model.ChatStatus
	tracker  UnreadTracker
	metrics  *monitorMetrics

	seedRetry    time.Duration
	maxSeedRetry time.Duration

	mu     sync.Mutex
	counts map[string]int
	seen   map[string]time.Time
	total  int
}

// NewUnreadMonitor builds a monitor over statuses, defaulting to every
// active status.
func NewUnreadMonitor(lister SessionLister, notifier UnreadNotifier, reg prometheus.Registerer, statuses ...model.ChatStatus) *UnreadMonitor {
	if len(statuses) == 0 {
		statuses = model.ActiveChatStatuses
	}
	filter := make(map[model.ChatStatus]bool, len(statuses))
	for _, status := range statuses {
		filter[status] = true
	}
	return &UnreadMonitor{
		lister:   lister,
		notifier: notifier,
		filter:   filter,
		statuses: statuses,
		metrics:  newMonitorMetrics(reg),

		seedRetry:    time.Second,
		maxSeedRetry: time.Minute,

		counts: make(map[string]int),
		seen:   make(map[string]time.Time),
	}
}

// Seed loads the current sessions and sets the baseline total. The baseline
// is reported but never notifies. Sessions already updated by a newer event
// keep their event state.
func (m *UnreadMonitor) Seed(ctx context.Context) error {
	res, err := m.lister.ListSessions(ctx, m.statuses)
	if err != nil {
		return err
	}

	m.mu.Lock()
	for _, session := range res.Sessions {
		if !m.advanceLocked(session.SessionID, parseStamp(session.UpdatedAt)) {
			continue
		}
		if m.filter[session.Status] {
			m.counts[session.SessionID] = session.UnreadByAgent
		} else {
			delete(m.counts, session.SessionID)
		}
	}
	total := m.sumLocked()
	m.tracker.Observe(total)
	m.mu.Unlock()

	m.report(ctx, total, false)
	return nil
}

// Apply folds the latest state of one session into the total.
func (m *UnreadMonitor) Apply(ctx context.Context, sessionID string, status model.ChatStatus, unreadByAgent int) {
	m.fold(ctx, sessionID, status, unreadByAgent, time.Time{})
}

// HandleEvent folds the session snapshot carried by event. A snapshot older
// than the last one applied for the same session is dropped.
func (m *UnreadMonitor) HandleEvent(ctx context.Context, event SessionEvent) {
	session := event.Session
	m.fold(ctx, session.SessionID, session.Status, session.UnreadByAgent, parseStamp(session.UpdatedAt))
}

func (m *UnreadMonitor) fold(ctx context.Context, sessionID string, status model.ChatStatus, unreadByAgent int, at time.Time) {
	m.mu.Lock()
	if !m.advanceLocked(sessionID, at) {
		m.mu.Unlock()
		m.metrics.staleEvents.Inc()
		return
	}
	previous := m.total
	if m.filter[status] {
		m.counts[sessionID] = unreadByAgent
	} else {
		delete(m.counts, sessionID)
	}
	total := m.sumLocked()
	notify := m.tracker.Observe(total)
	m.mu.Unlock()

	if total != previous || notify {
		m.report(ctx, total, notify)
	}
}

// advanceLocked records at as the latest state seen for sessionID and
// reports false when at is older than what was already applied. A zero at
// always applies.
func (m *UnreadMonitor) advanceLocked(sessionID string, at time.Time) bool {
	if at.IsZero() {
		return true
	}
	if last, ok := m.seen[sessionID]; ok && at.Before(last) {
		return false
	}
	m.seen[sessionID] = at
	return true
}

func (m *UnreadMonitor) sumLocked() int {
	total := 0
	for _, count := range m.counts {
		total += count
	}
	m.total = total
	return total
}

func parseStamp(value string) time.Time {
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return at
}

// Run seeds the monitor and then consumes events until ctx ends or the
// channel closes. A failed seed does not stop it: totals are counted from
// events and the seed is retried with backoff until it succeeds.
func (m *UnreadMonitor) Run(ctx context.Context, events <-chan SessionEvent) error {
	delay := m.seedRetry
	var retry <-chan time.Time
	if err := m.Seed(ctx); err != nil {
		slog.Warn("unread monitor seed failed, counting from events", "error", err, "retry_in", delay)
		retry = time.After(delay)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retry:
			if err := m.Seed(ctx); err != nil {
				delay = min(delay*2, m.maxSeedRetry)
				slog.Warn("unread monitor seed retry failed", "error", err, "retry_in", delay)
				retry = time.After(delay)
				continue
			}
			slog.Info("unread monitor seeded", "total", m.Total())
			retry = nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			m.HandleEvent(ctx, event)
		}
	}
}

func (m *UnreadMonitor) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func (m *UnreadMonitor) report(ctx context.Context, total int, notify bool) {
	m.metrics.total.Set(float64(total))
	if notify {
		m.metrics.notifications.Inc()
	}
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyUnreadTotal(ctx, total, notify); err != nil {
		slog.Warn("failed to deliver unread total", "total", total, "notify", notify, "error", err)
	}
}
