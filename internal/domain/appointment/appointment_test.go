package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

func newActive() *Appointment {
	return &Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Date:      schedule.NewDate(2026, time.September, 7),
		Time:      schedule.NewTimeOfDay(9, 0),
		Status:    StatusActive,
		Version:   1,
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusCompleted, true},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tt := range tests {
		a := &Appointment{Status: tt.from}
		assert.Equal(t, tt.want, a.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCancel(t *testing.T) {
	a := newActive()
	by := uuid.New()

	require.NoError(t, a.Cancel("patient request", by))
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "patient request", a.CancellationReason)
	require.NotNil(t, a.CancelledBy)
	assert.Equal(t, by, *a.CancelledBy)
	assert.NotNil(t, a.CancelledAt)

	// Terminal states reject any further transition.
	require.ErrorIs(t, a.Cancel("again", by), ErrNotActive)
	require.ErrorIs(t, a.Complete(), ErrNotActive)
}

func TestComplete(t *testing.T) {
	a := newActive()

	require.NoError(t, a.Complete())
	assert.Equal(t, StatusCompleted, a.Status)
	assert.NotNil(t, a.CompletedAt)

	require.ErrorIs(t, a.Cancel("too late", uuid.New()), ErrNotActive)
}

func TestMove(t *testing.T) {
	a := newActive()
	newDate := schedule.NewDate(2026, time.September, 8)
	newTime := schedule.NewTimeOfDay(14, 0)

	require.NoError(t, a.Move(newDate, newTime))
	assert.Equal(t, newDate, a.Date)
	assert.Equal(t, newTime, a.Time)
	assert.Equal(t, int64(2), a.Version)
	assert.Equal(t, StatusActive, a.Status, "reschedule keeps the appointment active")

	require.NoError(t, a.Move(newDate, schedule.NewTimeOfDay(15, 0)))
	assert.Equal(t, int64(3), a.Version)
}

func TestMoveRejectsTerminal(t *testing.T) {
	a := newActive()
	require.NoError(t, a.Cancel("", uuid.New()))

	err := a.Move(schedule.NewDate(2026, time.September, 8), schedule.NewTimeOfDay(14, 0))
	require.ErrorIs(t, err, ErrNotActive)
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusActive.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.True(t, StatusCompleted.IsValid())
	assert.False(t, Status("pending").IsValid())
	assert.False(t, Status("").IsValid())
}
