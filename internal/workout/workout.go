// Package workout holds the workout record and its derived metrics.
package workout

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind discriminates the workout variants.
type Kind string

const (
	Running Kind = "running"
	Cycling Kind = "cycling"
)

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Running, Cycling:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown workout type %q", s)
}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Workout is a recorded session. Exactly one of Running or Cycling is set,
// matching Kind.
type Workout struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Coords      Coords    `json:"coords"`
	Distance    float64   `json:"distance"` // km
	Duration    float64   `json:"duration"` // min
	Description string    `json:"description"`
	Kind        Kind      `json:"type"`

	Running *RunningStats `json:"running,omitempty"`
	Cycling *CyclingStats `json:"cycling,omitempty"`
}

// RunningStats is the running payload.
type RunningStats struct {
	Cadence float64 `json:"cadence"` // steps/min
	Pace    float64 `json:"pace"`    // min/km
}

// CyclingStats is the cycling payload. Elevation may be negative on descents.
type CyclingStats struct {
	Elevation float64 `json:"elevation"` // m
	Speed     float64 `json:"speed"`     // km/h
}

// NewRunning builds a running workout. Inputs are assumed validated; a zero
// distance yields a non-finite pace.
func NewRunning(id string, date time.Time, coords Coords, distance, duration, cadence float64) Workout {
	return Workout{
		ID:          id,
		Date:        date,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: Describe(Running, date),
		Kind:        Running,
		Running: &RunningStats{
			Cadence: cadence,
			Pace:    duration / distance,
		},
	}
}

// NewCycling builds a cycling workout. A zero duration yields a non-finite speed.
func NewCycling(id string, date time.Time, coords Coords, distance, duration, elevation float64) Workout {
	return Workout{
		ID:          id,
		Date:        date,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: Describe(Cycling, date),
		Kind:        Cycling,
		Cycling: &CyclingStats{
			Elevation: elevation,
			Speed:     distance / (duration / 60),
		},
	}
}

// Describe returns the label for a workout of the given kind created at date,
// e.g. "Running on April 14.".
func Describe(kind Kind, date time.Time) string {
	// A Caser keeps state between calls and cannot be shared across sessions.
	title := cases.Title(language.English).String(string(kind))
	return fmt.Sprintf("%s on %s %d.", title, date.Month(), date.Day())
}

// TimestampID returns the last 10 digits of t in Unix milliseconds.
func TimestampID(t time.Time) string {
	s := strconv.FormatInt(t.UnixMilli(), 10)
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}

// Metric returns the derived metric of the variant: pace for running, speed
// for cycling.
func (w Workout) Metric() float64 {
	switch {
	case w.Running != nil:
		return w.Running.Pace
	case w.Cycling != nil:
		return w.Cycling.Speed
	}
	return 0
}
