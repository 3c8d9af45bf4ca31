package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/session"
	"github.com/claude/mapty/internal/workout"
)

// --- Tool definitions ---

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a page session. Pass the user's position to load the map there; without one the session has no map and cannot record workouts."),
	mcp.WithNumber("lat", mcp.Description("Latitude of the user's position")),
	mcp.WithNumber("lng", mcp.Description("Longitude of the user's position")),
)

var toolClickMap = mcp.NewTool("click_map",
	mcp.WithDescription("Click the map at a position. Opens the entry form; the next logged workout is placed there."),
	mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Submit the entry form. Values are form text, e.g. \"5\" or \"12.5\". When lat/lng are given the map is clicked there first."),
	mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("type", mcp.Required(), mcp.Description("Workout type"), mcp.Enum("running", "cycling")),
	mcp.WithString("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithString("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithString("cadence", mcp.Description("Cadence in steps/min (running)")),
	mcp.WithString("elevation", mcp.Description("Elevation gain in m, may be negative (cycling)")),
	mcp.WithNumber("lat", mcp.Description("Latitude to click before submitting")),
	mcp.WithNumber("lng", mcp.Description("Longitude to click before submitting")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the session's workouts in the order they were logged, with pace (running) or speed (cycling)."),
	mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
)

var toolFocusWorkout = mcp.NewTool("focus_workout",
	mcp.WithDescription("Pan the map to a workout's marker, as clicking its list entry does."),
	mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout ID")),
)

// --- Tool handlers ---

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var report session.Report
	if pos, ok := optionalCoords(req); ok {
		report.Position = &pos
	}

	sess := h.sessions.Create(ctx, report)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"session":   sess.ID.String(),
		"map_ready": sess.Map() != nil,
		"alerts":    sess.Alerts.Drain(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) clickMap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := h.lookup(req)
	if errResult != nil {
		return errResult, nil
	}
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("lat parameter is required"), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("lng parameter is required"), nil
	}

	if err := sess.Click(workout.Coords{Lat: lat, Lng: lng}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(sess.Controller.Form())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := h.lookup(req)
	if errResult != nil {
		return errResult, nil
	}
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}

	if at, ok := optionalCoords(req); ok {
		if err := sess.Click(at); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	w, err := sess.Submit(app.FormInput{
		Type:      kind,
		Distance:  req.GetString("distance", ""),
		Duration:  req.GetString("duration", ""),
		Cadence:   req.GetString("cadence", ""),
		Elevation: req.GetString("elevation", ""),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			alerts := sess.Alerts.Drain()
			return mcp.NewToolResultError(fmt.Sprintf("%v (alerts: %v)", err, alerts)), nil
		}
		h.log.Error("mcp log_workout", "session", sess.ID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := h.lookup(req)
	if errResult != nil {
		return errResult, nil
	}
	workouts := sess.Controller.Workouts()
	if workouts == nil {
		workouts = []workout.Workout{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) focusWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := h.lookup(req)
	if errResult != nil {
		return errResult, nil
	}
	id, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	if _, ok := sess.Controller.Workout(id); !ok {
		return mcp.NewToolResultError("workout not found"), nil
	}

	if err := sess.Controller.MoveToMarker(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(sess.Map().View())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// lookup resolves the session argument. A non-nil result is the error to
// return to the client.
func (h *handlers) lookup(req mcp.CallToolRequest) (*session.Session, *mcp.CallToolResult) {
	raw, err := req.RequireString("session")
	if err != nil {
		return nil, mcp.NewToolResultError("session parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, mcp.NewToolResultError("invalid session ID")
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return sess, nil
}

// optionalCoords returns lat/lng when both are present.
func optionalCoords(req mcp.CallToolRequest) (workout.Coords, bool) {
	args := req.GetArguments()
	_, hasLat := args["lat"]
	_, hasLng := args["lng"]
	if !hasLat || !hasLng {
		return workout.Coords{}, false
	}
	return workout.Coords{Lat: req.GetFloat("lat", 0), Lng: req.GetFloat("lng", 0)}, true
}
