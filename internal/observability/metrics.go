// Package observability registers the service's prometheus collectors.
package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Name:      "workouts_created_total",
		Help:      "Workouts recorded, by type.",
	}, []string{"kind"})
	formRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Name:      "form_rejections_total",
		Help:      "Form submissions that did not record a workout, by reason.",
	}, []string{"reason"})
	mapClicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Name:      "map_clicks_total",
		Help:      "Map clicks delivered to sessions.",
	})
	sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Name:      "sessions_active",
		Help:      "Page sessions currently held in memory.",
	})
	locationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Name:      "location_failures_total",
		Help:      "Sessions started without a usable position.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, formRejections, mapClicks, sessionsActive, locationFailures)
}

// RecordWorkout counts a recorded workout.
func RecordWorkout(w workout.Workout) {
	workoutsCreated.WithLabelValues(string(w.Kind)).Inc()
}

// RecordRejection counts a failed submission, labelled by the sentinel it wraps.
func RecordRejection(err error) {
	if err == nil {
		return
	}
	formRejections.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, app.ErrNoPendingClick):
		return "no_pending_click"
	case errors.Is(err, app.ErrMapNotReady):
		return "map_not_ready"
	}
	return "other"
}

// RecordMapClick counts a delivered map click.
func RecordMapClick() {
	mapClicks.Inc()
}

// RecordLocationFailure counts a session that could not load its map.
func RecordLocationFailure() {
	locationFailures.Inc()
}

// SetSessionsActive sets the live session gauge.
func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}
