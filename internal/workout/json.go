package workout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// number is a float64 whose JSON form carries non-finite values as the
// strings "Infinity", "-Infinity" and "NaN". Derived metrics divide by user
// input and may overflow.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*n = number(math.NaN())
		case "Infinity":
			*n = number(math.Inf(1))
		case "-Infinity":
			*n = number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = number(v)
	return nil
}

type runningJSON struct {
	Cadence number `json:"cadence"`
	Pace    number `json:"pace"`
}

func (s RunningStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(runningJSON{Cadence: number(s.Cadence), Pace: number(s.Pace)})
}

func (s *RunningStats) UnmarshalJSON(data []byte) error {
	var v runningJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = RunningStats{Cadence: float64(v.Cadence), Pace: float64(v.Pace)}
	return nil
}

type cyclingJSON struct {
	Elevation number `json:"elevation"`
	Speed     number `json:"speed"`
}

func (s CyclingStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(cyclingJSON{Elevation: number(s.Elevation), Speed: number(s.Speed)})
}

func (s *CyclingStats) UnmarshalJSON(data []byte) error {
	var v cyclingJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = CyclingStats{Elevation: float64(v.Elevation), Speed: float64(v.Speed)}
	return nil
}
