package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

type manualScheduler struct{ funcs []func() }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) { s.funcs = append(s.funcs, f) }

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *time.Time) {
	t.Helper()
	now := time.Date(2026, time.April, 14, 9, 0, 0, 0, time.UTC)
	mg := NewManager(app.DefaultOptions(), ttl, slog.Default())
	mg.now = func() time.Time { return now }
	mg.scheduler = &manualScheduler{}
	return mg, &now
}

func TestCreateWithPosition(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)

	s := mg.Create(context.Background(), Report{Position: &workout.Coords{Lat: 48.85, Lng: 2.35}})
	require.NotNil(t, s.Map())
	assert.Equal(t, workout.Coords{Lat: 48.85, Lng: 2.35}, s.Map().View().Center)
	assert.Empty(t, s.Alerts.Drain())

	got, err := mg.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestCreateWithPositionError(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)

	s := mg.Create(context.Background(), Report{Error: "User denied Geolocation"})
	assert.Nil(t, s.Map())
	assert.Equal(t, []string{"Could not get your position."}, s.Alerts.Drain())
	assert.Empty(t, s.Alerts.Drain())

	assert.ErrorIs(t, s.Click(workout.Coords{Lat: 1, Lng: 1}), app.ErrMapNotReady)
}

func TestCreateWithoutCapability(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)

	s := mg.Create(context.Background(), Report{})
	assert.Nil(t, s.Map())
	assert.Equal(t, []string{"Could not get your position."}, s.Alerts.Drain())
}

func TestCreateCancelledContext(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := mg.Create(ctx, Report{Position: &workout.Coords{Lat: 1, Lng: 1}})
	assert.Nil(t, s.Map())
}

// TestSessionFlow runs the whole page flow through a session: click, submit,
// list click.
func TestSessionFlow(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)
	s := mg.Create(context.Background(), Report{Position: &workout.Coords{Lat: 40.7, Lng: -74}})

	require.NoError(t, s.Click(workout.Coords{Lat: 40.0, Lng: -73.0}))
	assert.False(t, s.Controller.Form().Hidden)

	w, err := s.Submit(app.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "180"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, w.Running.Pace)
	assert.Len(t, s.Map().Markers(), 1)

	_, err = s.Submit(app.FormInput{Type: "running", Distance: "-1", Duration: "25", Cadence: "180"})
	assert.ErrorIs(t, err, app.ErrInvalidInput)
	assert.Equal(t, []string{"Inputs have to be positive numbers."}, s.Alerts.Drain())
	assert.Len(t, s.Controller.Workouts(), 1)

	require.NoError(t, s.Controller.MoveToMarker(w.ID))
	assert.Equal(t, w.Coords, s.Map().View().Center)

	sum := s.Summary()
	assert.True(t, sum.MapReady)
	assert.Equal(t, 1, sum.Workouts)
}

func TestEnd(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)
	s := mg.Create(context.Background(), Report{})

	require.NoError(t, mg.End(s.ID))
	_, err := mg.Get(s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, mg.End(s.ID), ErrNotFound)
	assert.ErrorIs(t, mg.End(uuid.New()), ErrNotFound)
}

func TestListOldestFirst(t *testing.T) {
	mg, now := newTestManager(t, time.Hour)
	first := mg.Create(context.Background(), Report{})
	*now = now.Add(time.Minute)
	second := mg.Create(context.Background(), Report{})

	list := mg.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

// TestSweepEndsIdleSessions verifies only sessions idle past the ttl are
// ended, and that a lookup keeps a session alive.
func TestSweepEndsIdleSessions(t *testing.T) {
	mg, now := newTestManager(t, 30*time.Minute)
	idle := mg.Create(context.Background(), Report{})
	busy := mg.Create(context.Background(), Report{})

	*now = now.Add(20 * time.Minute)
	_, err := mg.Get(busy.ID)
	require.NoError(t, err)

	*now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, mg.Sweep(*now))

	_, err = mg.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mg.Get(busy.ID)
	assert.NoError(t, err)
}

func TestSweepDisabled(t *testing.T) {
	mg, now := newTestManager(t, 0)
	mg.Create(context.Background(), Report{})
	assert.Equal(t, 0, mg.Sweep(now.Add(24*time.Hour)))
	assert.Len(t, mg.List(), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	mg, _ := newTestManager(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
