package app

import (
	"bytes"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/workout"
)

const (
	iconRunning  = "🏃‍♂️"
	iconCycling  = "🚴‍♀️"
	iconDuration = "⏱"
	iconMetric   = "⚡️"
	iconCadence  = "🦶🏼"
	iconClimb    = "⛰"
)

// ListEntry is one rendered item of the workout list.
type ListEntry struct {
	WorkoutID string        `json:"workout_id"`
	HTML      template.HTML `json:"html"`
}

var entryTmpl = template.Must(template.New("entry").Funcs(template.FuncMap{
	"num":   formatNumber,
	"fixed": formatFixed,
	"icon":  kindIcon,
	"unit":  metricUnit,
}).Parse(`<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Description}}</h2>
  <div class="workout__details">
    <span class="workout__icon">{{icon .Kind}}</span>
    <span class="workout__value">{{num .Distance}}</span>
    <span class="workout__unit">km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">` + iconDuration + `</span>
    <span class="workout__value">{{num .Duration}}</span>
    <span class="workout__unit">min</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">` + iconMetric + `</span>
    <span class="workout__value">{{fixed .Metric}}</span>
    <span class="workout__unit">{{unit .Kind}}</span>
  </div>
{{- with .Running}}
  <div class="workout__details">
    <span class="workout__icon">` + iconCadence + `</span>
    <span class="workout__value">{{num .Cadence}}</span>
    <span class="workout__unit">spm</span>
  </div>
{{- end}}
{{- with .Cycling}}
  <div class="workout__details">
    <span class="workout__icon">` + iconClimb + `</span>
    <span class="workout__value">{{num .Elevation}}</span>
    <span class="workout__unit">m</span>
  </div>
{{- end}}
</li>
`))

// renderEntry renders the list item for w.
func renderEntry(w workout.Workout) (ListEntry, error) {
	var buf bytes.Buffer
	if err := entryTmpl.Execute(&buf, w); err != nil {
		return ListEntry{}, err
	}
	return ListEntry{WorkoutID: w.ID, HTML: template.HTML(buf.String())}, nil
}

// markerFor builds the marker and popup for w.
func markerFor(w workout.Workout) Marker {
	return Marker{
		WorkoutID: w.ID,
		Coords:    w.Coords,
		Popup: Popup{
			Content:      kindIcon(w.Kind) + " " + w.Description,
			MaxWidth:     250,
			MinWidth:     150,
			AutoClose:    false,
			CloseOnClick: false,
			ClassName:    string(w.Kind) + "-popup",
		},
		Open: true,
	}
}

func kindIcon(k workout.Kind) string {
	if k == workout.Running {
		return iconRunning
	}
	return iconCycling
}

func metricUnit(k workout.Kind) string {
	if k == workout.Running {
		return "min/km"
	}
	return "km/h"
}

// formatNumber prints v the way a browser prints a number.
func formatNumber(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed prints v with one decimal place, rounding the exact binary
// value half away from zero like a browser's toFixed(1).
func formatFixed(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	if math.Abs(v) >= 1e21 {
		return formatNumber(v)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	// 1074 fractional digits hold any float64 exactly.
	exact := strconv.FormatFloat(v, 'f', 1074, 64)
	dot := strings.IndexByte(exact, '.')
	kept := exact[:dot+2]
	if exact[dot+2] >= '5' {
		kept = incrementDigits(kept)
	}
	return sign + kept
}

// incrementDigits adds one unit in the last place of a decimal string.
func incrementDigits(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		switch {
		case b[i] == '.':
			continue
		case b[i] < '9':
			b[i]++
			return string(b)
		default:
			b[i] = '0'
		}
	}
	return "1" + string(b)
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	return "", false
}
