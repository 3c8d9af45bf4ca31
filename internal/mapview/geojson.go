package mapview

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON geometry. Point coordinates are [lng, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// GeoJSON exports the markers as Point features.
func (m *Map) GeoJSON() FeatureCollection {
	markers := m.Markers()
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(markers))}
	for _, mk := range markers {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{mk.Coords.Lng, mk.Coords.Lat},
			},
			Properties: map[string]any{
				"workout_id":  mk.WorkoutID,
				"popup":       mk.Popup.Content,
				"popup_class": mk.Popup.ClassName,
			},
		})
	}
	return fc
}
