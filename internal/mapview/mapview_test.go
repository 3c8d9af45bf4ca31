package mapview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

// TestClickWithoutHandler verifies clicks are rejected until a handler subscribes.
func TestClickWithoutHandler(t *testing.T) {
	m := New(workout.Coords{Lat: 1, Lng: 2}, 13)
	if err := m.Click(workout.Coords{}); !errors.Is(err, ErrNoClickHandler) {
		t.Fatalf("Click() error = %v, want ErrNoClickHandler", err)
	}
}

func TestSetViewRecordsAnimation(t *testing.T) {
	m := New(workout.Coords{Lat: 1, Lng: 2}, 13)
	if v := m.View(); v.Animation != nil {
		t.Fatalf("animation = %+v before any SetView, want nil", v.Animation)
	}

	m.SetView(workout.Coords{Lat: 5, Lng: 6}, 15, app.ViewOptions{Animate: true, PanDuration: time.Second})
	v := m.View()
	if v.Center != (workout.Coords{Lat: 5, Lng: 6}) {
		t.Errorf("center = %+v, want {5 6}", v.Center)
	}
	if v.Zoom != 15 {
		t.Errorf("zoom = %d, want 15", v.Zoom)
	}
	if v.Animation == nil || !v.Animation.Animate || v.Animation.PanDuration != time.Second {
		t.Errorf("animation = %+v, want animate with 1s pan", v.Animation)
	}
}

// TestGeoJSONCoordinateOrder verifies points are exported as [lng, lat].
func TestGeoJSONCoordinateOrder(t *testing.T) {
	m := New(workout.Coords{}, 13)
	m.AddMarker(app.Marker{
		WorkoutID: "123",
		Coords:    workout.Coords{Lat: 40, Lng: -73},
		Popup:     app.Popup{Content: "🏃‍♂️ Running on April 14.", ClassName: "running-popup"},
	})

	fc := m.GeoJSON()
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
	f := fc.Features[0]
	if got := f.Geometry.Coordinates; got[0] != -73 || got[1] != 40 {
		t.Errorf("coordinates = %v, want [-73 40]", got)
	}
	if f.Properties["workout_id"] != "123" {
		t.Errorf("workout_id = %v, want 123", f.Properties["workout_id"])
	}
	if f.Properties["popup_class"] != "running-popup" {
		t.Errorf("popup_class = %v, want running-popup", f.Properties["popup_class"])
	}
}

func TestGeoJSONEmpty(t *testing.T) {
	fc := New(workout.Coords{}, 13).GeoJSON()
	if fc.Features == nil || len(fc.Features) != 0 {
		t.Errorf("features = %v, want empty non-nil slice", fc.Features)
	}
}

type staticLocator workout.Coords

func (s staticLocator) CurrentPosition(context.Context) (workout.Coords, error) {
	return workout.Coords(s), nil
}

// TestControllerDrivesMap runs a controller against the headless map: clicks
// flow back into the controller and submissions add markers.
func TestControllerDrivesMap(t *testing.T) {
	var m *Map
	c := app.New(app.DefaultOptions(), app.Deps{
		Locator:   staticLocator{Lat: 40.7, Lng: -74},
		NewMap:    Factory(func(created *Map) { m = created }),
		Scheduler: noopScheduler{},
	})
	if err := c.AcquireLocation(context.Background()); err != nil {
		t.Fatalf("AcquireLocation: %v", err)
	}
	if m == nil {
		t.Fatal("map not created")
	}
	if v := m.View(); v.Center != (workout.Coords{Lat: 40.7, Lng: -74}) || v.Zoom != 13 || len(v.Tiles) != 1 {
		t.Fatalf("view = %+v, want centered at user with one tile layer", v)
	}

	if err := m.Click(workout.Coords{Lat: 40, Lng: -73}); err != nil {
		t.Fatalf("Click: %v", err)
	}
	w, err := c.Submit(app.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "180"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	markers := m.Markers()
	if len(markers) != 1 || markers[0].WorkoutID != w.ID {
		t.Fatalf("markers = %+v, want one for %s", markers, w.ID)
	}

	if err := c.MoveToMarker(w.ID); err != nil {
		t.Fatalf("MoveToMarker: %v", err)
	}
	if v := m.View(); v.Center != w.Coords {
		t.Errorf("center after list click = %+v, want %+v", v.Center, w.Coords)
	}
}

type noopScheduler struct{}

func (noopScheduler) AfterFunc(time.Duration, func()) {}
