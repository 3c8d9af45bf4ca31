package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/observability"
)

// Manager holds the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	opts      app.Options
	ttl       time.Duration
	scheduler app.Scheduler
	now       func() time.Time
	log       *slog.Logger
}

// NewManager creates a Manager. Sessions idle longer than ttl are ended by
// Sweep; a zero ttl keeps them forever.
func NewManager(opts app.Options, ttl time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		opts:      opts,
		ttl:       ttl,
		scheduler: app.TimerScheduler{},
		now:       time.Now,
		log:       log,
	}
}

// Create starts a session and acquires its position from r. A missing or
// failed position still creates the session; it just has no map and an alert
// waiting in its log.
func (mg *Manager) Create(ctx context.Context, r Report) *Session {
	now := mg.now()
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		Alerts:    &AlertLog{},
		lastSeen:  now,
	}
	s.Controller = app.New(mg.opts, app.Deps{
		Locator:   r.locator(),
		NewMap:    mapview.Factory(s.setMap),
		Alerter:   s.Alerts,
		Scheduler: mg.scheduler,
		Clock:     mg.now,
		Log:       mg.log.With("session", s.ID),
	})
	s.Controller.OnCreate(observability.RecordWorkout)

	if err := s.Controller.AcquireLocation(ctx); err != nil {
		observability.RecordLocationFailure()
		mg.log.Warn("session started without map", "session", s.ID, "error", err)
	}

	mg.mu.Lock()
	mg.sessions[s.ID] = s
	n := len(mg.sessions)
	mg.mu.Unlock()
	observability.SetSessionsActive(n)

	mg.log.Info("session started", "session", s.ID, "map_ready", s.Map() != nil)
	return s
}

// Get returns the session with the given id and marks it as seen.
func (mg *Manager) Get(id uuid.UUID) (*Session, error) {
	mg.mu.RLock()
	s, ok := mg.sessions[id]
	mg.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(mg.now())
	return s, nil
}

// End discards a session and everything recorded in it.
func (mg *Manager) End(id uuid.UUID) error {
	mg.mu.Lock()
	_, ok := mg.sessions[id]
	delete(mg.sessions, id)
	n := len(mg.sessions)
	mg.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	observability.SetSessionsActive(n)
	mg.log.Info("session ended", "session", id)
	return nil
}

// List returns summaries of all sessions, oldest first.
func (mg *Manager) List() []Summary {
	mg.mu.RLock()
	out := make([]Summary, 0, len(mg.sessions))
	for _, s := range mg.sessions {
		out = append(out, s.Summary())
	}
	mg.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// Sweep ends sessions not seen within the ttl and returns how many it ended.
func (mg *Manager) Sweep(now time.Time) int {
	if mg.ttl <= 0 {
		return 0
	}
	mg.mu.Lock()
	var ended int
	for id, s := range mg.sessions {
		if now.Sub(s.LastSeen()) > mg.ttl {
			delete(mg.sessions, id)
			ended++
		}
	}
	n := len(mg.sessions)
	mg.mu.Unlock()

	if ended > 0 {
		observability.SetSessionsActive(n)
		mg.log.Info("idle sessions ended", "count", ended, "remaining", n)
	}
	return ended
}

// Run sweeps every interval until ctx is done.
func (mg *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			mg.Sweep(t)
		}
	}
}
