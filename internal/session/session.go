// Package session keeps one controller per page session and ends idle ones.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/observability"
	"github.com/claude/mapty/internal/workout"
)

// ErrNotFound is returned for an unknown or ended session.
var ErrNotFound = errors.New("session not found")

// Report is the client's geolocation outcome at page load. With neither field
// set the client has no geolocation capability.
type Report struct {
	Position *workout.Coords `json:"position,omitempty"`
	Error    string          `json:"position_error,omitempty"`
}

func (r Report) locator() app.Locator {
	if r.Position == nil && r.Error == "" {
		return nil
	}
	return reportedLocator(r)
}

type reportedLocator Report

func (l reportedLocator) CurrentPosition(ctx context.Context) (workout.Coords, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coords{}, err
	}
	if l.Position == nil {
		return workout.Coords{}, fmt.Errorf("client reported: %s", l.Error)
	}
	return *l.Position, nil
}

// AlertLog collects alerts until the client drains them.
type AlertLog struct {
	mu   sync.Mutex
	msgs []string
}

// Alert implements app.Alerter.
func (a *AlertLog) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

// Drain returns pending alerts and clears the log.
func (a *AlertLog) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	msgs := a.msgs
	a.msgs = nil
	if msgs == nil {
		msgs = []string{}
	}
	return msgs
}

// Session is one page load.
type Session struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Controller *app.Controller
	Alerts     *AlertLog

	mu       sync.Mutex
	m        *mapview.Map
	lastSeen time.Time
}

// Map returns the session's map, or nil before a position was acquired.
func (s *Session) Map() *mapview.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

func (s *Session) setMap(m *mapview.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// LastSeen returns the time the session was last looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Click delivers a map click.
func (s *Session) Click(at workout.Coords) error {
	m := s.Map()
	if m == nil {
		return app.ErrMapNotReady
	}
	if err := m.Click(at); err != nil {
		return fmt.Errorf("clicking map: %w", err)
	}
	observability.RecordMapClick()
	return nil
}

// Submit submits the entry form.
func (s *Session) Submit(in app.FormInput) (workout.Workout, error) {
	w, err := s.Controller.Submit(in)
	if err != nil {
		observability.RecordRejection(err)
		return workout.Workout{}, err
	}
	return w, nil
}

// Summary describes a session for listings.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	MapReady  bool      `json:"map_ready"`
	Workouts  int       `json:"workouts"`
}

// Summary returns the listing view of s.
func (s *Session) Summary() Summary {
	return Summary{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
		MapReady:  s.Map() != nil,
		Workouts:  len(s.Controller.Workouts()),
	}
}
