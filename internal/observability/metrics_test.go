package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

func TestRecordWorkoutByKind(t *testing.T) {
	before := testutil.ToFloat64(workoutsCreated.WithLabelValues("cycling"))
	RecordWorkout(workout.NewCycling("1", time.Now(), workout.Coords{}, 10, 30, 0))
	assert.Equal(t, before+1, testutil.ToFloat64(workoutsCreated.WithLabelValues("cycling")))
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "invalid_input", rejectionReason(fmt.Errorf("%w: bad", app.ErrInvalidInput)))
	assert.Equal(t, "no_pending_click", rejectionReason(app.ErrNoPendingClick))
	assert.Equal(t, "map_not_ready", rejectionReason(app.ErrMapNotReady))
	assert.Equal(t, "other", rejectionReason(fmt.Errorf("boom")))
}

func TestRecordRejectionIgnoresNil(t *testing.T) {
	before := testutil.ToFloat64(formRejections.WithLabelValues("other"))
	RecordRejection(nil)
	assert.Equal(t, before, testutil.ToFloat64(formRejections.WithLabelValues("other")))
}

func TestSetSessionsActive(t *testing.T) {
	SetSessionsActive(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(sessionsActive))
}
