// Package app implements the workout tracker controller: the state machine
// behind the map, the entry form and the workout list.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/claude/mapty/internal/workout"
)

const (
	msgNoPosition   = "Could not get your position."
	msgInvalidInput = "Inputs have to be positive numbers."
)

// Options configures a Controller.
type Options struct {
	Zoom         int
	TileLayer    TileLayer
	RestoreDelay time.Duration // form display restoration after hide
	PanDuration  time.Duration
}

// DefaultOptions returns the stock map and form settings.
func DefaultOptions() Options {
	return Options{
		Zoom: 13,
		TileLayer: TileLayer{
			URLTemplate: "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		},
		RestoreDelay: time.Second,
		PanDuration:  time.Second,
	}
}

// Deps are the controller's collaborators. Locator may be nil when the
// geolocation capability is absent.
type Deps struct {
	Locator   Locator
	NewMap    MapFactory
	Alerter   Alerter
	Scheduler Scheduler
	Clock     func() time.Time
	Log       *slog.Logger
}

// Controller owns one page session's state. All methods are safe for
// concurrent use; events are applied one at a time.
type Controller struct {
	mu sync.Mutex

	opts Options
	deps Deps

	m        Map
	pending  *workout.Coords
	form     FormState
	workouts []workout.Workout
	entries  []ListEntry
	lastID   time.Time
	onCreate func(workout.Workout)
}

// New creates a Controller. The map is not created until AcquireLocation succeeds.
func New(opts Options, deps Deps) *Controller {
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Controller{
		opts: opts,
		deps: deps,
		form: newFormState(),
	}
}

// OnCreate registers a callback invoked after each workout is recorded.
func (c *Controller) OnCreate(f func(workout.Workout)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCreate = f
}

// AcquireLocation asks for the user's position and loads the map there.
func (c *Controller) AcquireLocation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deps.Locator == nil {
		c.alert(msgNoPosition)
		return fmt.Errorf("acquiring location: %w", ErrLocationUnavailable)
	}
	pos, err := c.deps.Locator.CurrentPosition(ctx)
	if err != nil {
		c.alert(msgNoPosition)
		return fmt.Errorf("acquiring location: %w: %v", ErrLocationUnavailable, err)
	}
	c.loadMap(pos)
	return nil
}

func (c *Controller) loadMap(center workout.Coords) {
	c.m = c.deps.NewMap(center, c.opts.Zoom)
	c.m.AddTileLayer(c.opts.TileLayer)
	c.m.OnClick(c.HandleMapClick)
	c.deps.Log.Debug("map loaded", "lat", center.Lat, "lng", center.Lng, "zoom", c.opts.Zoom)
}

// HandleMapClick records the clicked position and opens the form.
// A later click replaces an earlier one.
func (c *Controller) HandleMapClick(at workout.Coords) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &at
	c.form.Hidden = false
	c.form.Focus = InputDistance
}

// ChangeType switches the form to kind. All inputs are cleared.
func (c *Controller) ChangeType(kind workout.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.clearInputs()
	c.form.Type = kind
	c.form.CadenceRowHidden = kind != workout.Running
	c.form.ElevationRowHidden = kind != workout.Cycling
}

// Submit validates in and records a workout at the pending click position.
// Invalid input alerts the user and leaves all state untouched.
func (c *Controller) Submit(in FormInput) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.m == nil {
		return workout.Workout{}, ErrMapNotReady
	}
	if c.pending == nil {
		return workout.Workout{}, ErrNoPendingClick
	}

	kind, err := workout.ParseKind(in.Type)
	if err != nil {
		c.alert(msgInvalidInput)
		return workout.Workout{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	distance := parseNumber(in.Distance)
	duration := parseNumber(in.Duration)
	at := *c.pending

	var w workout.Workout
	switch kind {
	case workout.Running:
		cadence := parseNumber(in.Cadence)
		if !allFinite(distance, duration, cadence) || !allPositive(distance, duration, cadence) {
			c.alert(msgInvalidInput)
			return workout.Workout{}, fmt.Errorf("%w: running needs positive distance, duration and cadence", ErrInvalidInput)
		}
		now := c.now()
		w = workout.NewRunning(workout.TimestampID(now), now, at, distance, duration, cadence)
	case workout.Cycling:
		elevation := parseNumber(in.Elevation)
		if !allFinite(distance, duration, elevation) || !allPositive(distance, duration) {
			c.alert(msgInvalidInput)
			return workout.Workout{}, fmt.Errorf("%w: cycling needs positive distance and duration", ErrInvalidInput)
		}
		now := c.now()
		w = workout.NewCycling(workout.TimestampID(now), now, at, distance, duration, elevation)
	}

	entry, err := renderEntry(w)
	if err != nil {
		return workout.Workout{}, fmt.Errorf("rendering workout %s: %w", w.ID, err)
	}

	c.workouts = append(c.workouts, w)
	c.form.clearInputs()
	c.hideForm()
	c.m.AddMarker(markerFor(w))
	c.entries = append(c.entries, entry)

	c.deps.Log.Info("workout recorded", "id", w.ID, "type", w.Kind, "distance", w.Distance, "duration", w.Duration)
	if c.onCreate != nil {
		c.onCreate(w)
	}
	return w, nil
}

// now returns the creation time for the next workout, nudged forward so that
// its timestamp id differs from the previous one.
func (c *Controller) now() time.Time {
	t := c.deps.Clock()
	if !c.lastID.IsZero() && t.UnixMilli() <= c.lastID.UnixMilli() {
		t = c.lastID.Add(time.Millisecond)
	}
	c.lastID = t
	return t
}

func (c *Controller) hideForm() {
	c.form.Display = displayNone
	c.form.Hidden = true
	c.form.Focus = ""
	c.deps.Scheduler.AfterFunc(c.opts.RestoreDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.form.Display = displayGrid
	})
}

// MoveToMarker pans the map to the workout with the given id. An empty or
// unknown id is ignored.
func (c *Controller) MoveToMarker(workoutID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if workoutID == "" {
		return nil
	}
	if c.m == nil {
		return ErrMapNotReady
	}
	i := slices.IndexFunc(c.workouts, func(w workout.Workout) bool { return w.ID == workoutID })
	if i < 0 {
		return nil
	}
	c.m.SetView(c.workouts[i].Coords, c.opts.Zoom, ViewOptions{
		Animate:     true,
		PanDuration: c.opts.PanDuration,
	})
	return nil
}

func (c *Controller) alert(msg string) {
	if c.deps.Alerter != nil {
		c.deps.Alerter.Alert(msg)
	}
}

// State is a point-in-time copy of the controller's observable state.
type State struct {
	MapReady bool              `json:"map_ready"`
	Pending  *workout.Coords   `json:"pending,omitempty"`
	Form     FormState         `json:"form"`
	Workouts []workout.Workout `json:"workouts"`
	Entries  []ListEntry       `json:"entries"`
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		MapReady: c.m != nil,
		Form:     c.form,
		Workouts: slices.Clone(c.workouts),
		Entries:  slices.Clone(c.entries),
	}
	if s.Workouts == nil {
		s.Workouts = []workout.Workout{}
	}
	if s.Entries == nil {
		s.Entries = []ListEntry{}
	}
	if c.pending != nil {
		p := *c.pending
		s.Pending = &p
	}
	return s
}

// Form returns the current form state.
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Workouts returns the recorded workouts in insertion order.
func (c *Controller) Workouts() []workout.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.workouts)
}

// Workout returns the workout with the given id.
func (c *Controller) Workout(id string) (workout.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return workout.Workout{}, false
}

// Entries returns the rendered list entries in insertion order.
func (c *Controller) Entries() []ListEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.entries)
}
