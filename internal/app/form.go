package app

import (
	"math"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/workout"
)

// InputDistance names the input focused when the form opens.
const InputDistance = "distance"

const (
	displayGrid = "grid"
	displayNone = "none"
)

// FormState mirrors the entry form as the user sees it.
type FormState struct {
	Hidden             bool         `json:"hidden"`
	Display            string       `json:"display"`
	Type               workout.Kind `json:"type"`
	Distance           string       `json:"distance"`
	Duration           string       `json:"duration"`
	Cadence            string       `json:"cadence"`
	Elevation          string       `json:"elevation"`
	CadenceRowHidden   bool         `json:"cadence_row_hidden"`
	ElevationRowHidden bool         `json:"elevation_row_hidden"`
	Focus              string       `json:"focus,omitempty"`
}

func newFormState() FormState {
	return FormState{
		Hidden:             true,
		Display:            displayGrid,
		Type:               workout.Running,
		ElevationRowHidden: true,
	}
}

func (f *FormState) clearInputs() {
	f.Distance = ""
	f.Duration = ""
	f.Cadence = ""
	f.Elevation = ""
}

// FormInput is a submission of the entry form. Values are raw input text.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// parseNumber converts input text the way a browser's unary plus does for
// decimal input: blank is 0, anything unparsable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	// ParseFloat accepts "inf" and "nan" spellings that a browser rejects.
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func allPositive(vs ...float64) bool {
	for _, v := range vs {
		if !(v > 0) {
			return false
		}
	}
	return true
}
