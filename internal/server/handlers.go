package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/session"
	"github.com/claude/mapty/internal/workout"
)

// sessionResponse is the full view of a session returned to clients.
type sessionResponse struct {
	ID     uuid.UUID     `json:"id"`
	State  app.State     `json:"state"`
	Map    *mapview.View `json:"map,omitempty"`
	Alerts []string      `json:"alerts,omitempty"`
}

func newSessionResponse(sess *session.Session, alerts []string) sessionResponse {
	resp := sessionResponse{
		ID:     sess.ID,
		State:  sess.Controller.Snapshot(),
		Alerts: alerts,
	}
	if m := sess.Map(); m != nil {
		v := m.View()
		resp.Map = &v
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var report session.Report
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &report) {
			return
		}
	}
	if p := report.Position; p != nil && !validCoords(*p) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "position out of range"})
		return
	}

	sess := s.sessions.Create(r.Context(), report)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess, sess.Alerts.Drain()))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess, nil))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if err := s.sessions.End(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var at workout.Coords
	if !decodeJSON(w, r, &at) {
		return
	}
	if !validCoords(at) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return
	}

	if err := sess.Click(at); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Controller.Form())
}

func (s *Server) handleChangeType(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Type string `json:"type"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	kind, err := workout.ParseKind(body.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sess.Controller.ChangeType(kind)
	writeJSON(w, http.StatusOK, sess.Controller.Form())
}

// submitRequest accepts form values as JSON strings or numbers.
type submitRequest struct {
	Type      string     `json:"type"`
	Distance  inputValue `json:"distance"`
	Duration  inputValue `json:"duration"`
	Cadence   inputValue `json:"cadence"`
	Elevation inputValue `json:"elevation"`
}

// inputValue is the raw text of a form input.
type inputValue string

func (v *inputValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = inputValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = inputValue(n.String())
	return nil
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wk, err := sess.Submit(app.FormInput{
		Type:      req.Type,
		Distance:  string(req.Distance),
		Duration:  string(req.Duration),
		Cadence:   string(req.Cadence),
		Elevation: string(req.Elevation),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  err.Error(),
				"alerts": sess.Alerts.Drain(),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wk)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	workouts := sess.Controller.Workouts()
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	wk, found := sess.Controller.Workout(chi.URLParam(r, "workoutID"))
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleListClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		WorkoutID string `json:"workout_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := sess.Controller.MoveToMarker(body.WorkoutID); err != nil {
		writeError(w, err)
		return
	}
	var view *mapview.View
	if m := sess.Map(); m != nil {
		v := m.View()
		view = &v
	}
	writeJSON(w, http.StatusOK, map[string]any{"map": view})
}

func (s *Server) handleRenderList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var b strings.Builder
	for _, e := range sess.Controller.Entries() {
		b.WriteString(string(e.HTML))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	fc := mapview.FeatureCollection{Type: "FeatureCollection", Features: []mapview.Feature{}}
	if m := sess.Map(); m != nil {
		fc = m.GeoJSON()
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(fc)
}

func (s *Server) handleDrainAlerts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"alerts": sess.Alerts.Drain()})
}

// session resolves the {sessionID} URL parameter, writing the error response
// itself when it cannot.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func validCoords(c workout.Coords) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// writeError maps controller and registry errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrMapNotReady), errors.Is(err, app.ErrNoPendingClick), errors.Is(err, mapview.ErrNoClickHandler):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
