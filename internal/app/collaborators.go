package app

import (
	"context"
	"errors"
	"time"

	"github.com/claude/mapty/internal/workout"
)

var (
	// ErrLocationUnavailable is returned when the position cannot be acquired
	// or the locator capability is missing.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrInvalidInput is returned when a submitted form fails validation.
	// The user has already been alerted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMapNotReady is returned by map-dependent operations before the map
	// has been initialised.
	ErrMapNotReady = errors.New("map not initialised")

	// ErrNoPendingClick is returned when a form is submitted before any map click.
	ErrNoPendingClick = errors.New("no pending map click")
)

// Locator yields the user's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (workout.Coords, error)
}

// Map is the subset of the map widget the controller drives.
type Map interface {
	AddTileLayer(layer TileLayer)
	OnClick(handler func(workout.Coords))
	AddMarker(marker Marker)
	SetView(center workout.Coords, zoom int, opts ViewOptions)
}

// MapFactory creates a map centered at center with the given zoom.
type MapFactory func(center workout.Coords, zoom int) Map

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TileLayer describes the raster tile source added to the map.
type TileLayer struct {
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
}

// Popup holds the popup options bound to a marker.
type Popup struct {
	Content      string `json:"content"`
	MaxWidth     int    `json:"max_width"`
	MinWidth     int    `json:"min_width"`
	AutoClose    bool   `json:"auto_close"`
	CloseOnClick bool   `json:"close_on_click"`
	ClassName    string `json:"class_name"`
}

// Marker is a pin on the map with its popup.
type Marker struct {
	WorkoutID string         `json:"workout_id"`
	Coords    workout.Coords `json:"coords"`
	Popup     Popup          `json:"popup"`
	Open      bool           `json:"open"`
}

// ViewOptions controls how SetView moves the map.
type ViewOptions struct {
	Animate     bool          `json:"animate"`
	PanDuration time.Duration `json:"pan_duration"`
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
