// Package mapview is a headless map widget. It keeps the view, tile layer and
// markers a browser map would show, and delivers clicks to the subscriber.
package mapview

import (
	"errors"
	"slices"
	"sync"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

// ErrNoClickHandler is returned by Click when nothing subscribed to clicks.
var ErrNoClickHandler = errors.New("map has no click handler")

// Map implements app.Map.
type Map struct {
	mu       sync.Mutex
	center   workout.Coords
	zoom     int
	tiles    []app.TileLayer
	markers  []app.Marker
	lastView *app.ViewOptions
	onClick  func(workout.Coords)
}

// New creates a map centered at center.
func New(center workout.Coords, zoom int) *Map {
	return &Map{center: center, zoom: zoom}
}

// Factory adapts New to app.MapFactory, reporting each created map to created.
func Factory(created func(*Map)) app.MapFactory {
	return func(center workout.Coords, zoom int) app.Map {
		m := New(center, zoom)
		if created != nil {
			created(m)
		}
		return m
	}
}

// AddTileLayer implements app.Map.
func (m *Map) AddTileLayer(layer app.TileLayer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles = append(m.tiles, layer)
}

// OnClick implements app.Map. A later subscription replaces the earlier one.
func (m *Map) OnClick(handler func(workout.Coords)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClick = handler
}

// AddMarker implements app.Map.
func (m *Map) AddMarker(marker app.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = append(m.markers, marker)
}

// SetView implements app.Map.
func (m *Map) SetView(center workout.Coords, zoom int, opts app.ViewOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.center = center
	m.zoom = zoom
	m.lastView = &opts
}

// Click delivers a click at the given position to the subscriber.
func (m *Map) Click(at workout.Coords) error {
	m.mu.Lock()
	h := m.onClick
	m.mu.Unlock()

	if h == nil {
		return ErrNoClickHandler
	}
	h(at)
	return nil
}

// View is the map's current viewport.
type View struct {
	Center    workout.Coords   `json:"center"`
	Zoom      int              `json:"zoom"`
	Animation *app.ViewOptions `json:"animation,omitempty"`
	Tiles     []app.TileLayer  `json:"tiles"`
}

// View returns the current viewport.
func (m *Map) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{
		Center: m.center,
		Zoom:   m.zoom,
		Tiles:  slices.Clone(m.tiles),
	}
	if m.lastView != nil {
		o := *m.lastView
		v.Animation = &o
	}
	return v
}

// Markers returns the markers in the order they were added.
func (m *Map) Markers() []app.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.markers)
}
