package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

func newAvailabilityFixture() (*AvailabilityService, *memAvailability, uuid.UUID) {
	repo := newMemAvailability()
	svc := NewAvailabilityService(repo, zap.NewNop())
	return svc, repo, uuid.New()
}

func TestEnsureForDoctor(t *testing.T) {
	svc, _, doctorID := newAvailabilityFixture()

	a, err := svc.EnsureForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultSlotDurationMins, a.SlotDurationMins)

	// A second call returns the existing document instead of recreating it.
	require.NoError(t, a.SetSlotDuration(60))
	again, err := svc.EnsureForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, 60, again.SlotDurationMins)
}

func TestAvailabilityMutationAuthorization(t *testing.T) {
	svc, _, doctorID := newAvailabilityFixture()
	_, err := svc.EnsureForDoctor(context.Background(), doctorID)
	require.NoError(t, err)

	_, err = svc.SetSlotDuration(context.Background(), doctorID, patientIdentity(uuid.New()), 60)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SetSlotDuration(context.Background(), doctorID, doctorIdentity(uuid.New()), 60)
	require.ErrorIs(t, err, ErrForbidden, "a different doctor may not edit the schedule")

	a, err := svc.SetSlotDuration(context.Background(), doctorID, doctorIdentity(doctorID), 60)
	require.NoError(t, err)
	assert.Equal(t, 60, a.SlotDurationMins)

	a, err = svc.SetSlotDuration(context.Background(), doctorID, adminIdentity(), 45)
	require.NoError(t, err)
	assert.Equal(t, 45, a.SlotDurationMins)
}

func TestAvailabilityMutationValidationRejected(t *testing.T) {
	svc, repo, doctorID := newAvailabilityFixture()
	_, err := svc.EnsureForDoctor(context.Background(), doctorID)
	require.NoError(t, err)

	_, err = svc.SetSlotDuration(context.Background(), doctorID, adminIdentity(), 5)
	require.ErrorIs(t, err, schedule.ErrInvalidConfig)

	stored, err := repo.GetByDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultSlotDurationMins, stored.SlotDurationMins,
		"rejected edits never reach storage")
}

func TestAvailabilityBlockedIntervalLifecycle(t *testing.T) {
	svc, _, doctorID := newAvailabilityFixture()
	_, err := svc.EnsureForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	admin := adminIdentity()

	date := schedule.NewDate(2026, time.September, 7)
	block := schedule.BlockedInterval{
		Date:   date,
		Start:  schedule.NewTimeOfDay(10, 0),
		End:    schedule.NewTimeOfDay(11, 0),
		Reason: "conference",
	}

	a, err := svc.AddBlockedInterval(context.Background(), doctorID, admin, block)
	require.NoError(t, err)
	require.Len(t, a.BlockedIntervals, 1)
	assert.False(t, a.IsOpen(date, schedule.NewTimeOfDay(10, 30)))

	_, err = svc.AddBlockedInterval(context.Background(), doctorID, admin, schedule.BlockedInterval{
		Date:  date,
		Start: schedule.NewTimeOfDay(10, 30),
		End:   schedule.NewTimeOfDay(11, 30),
	})
	require.ErrorIs(t, err, schedule.ErrOverlappingBlock)

	a, err = svc.RemoveBlockedInterval(context.Background(), doctorID, admin, date, schedule.NewTimeOfDay(10, 0))
	require.NoError(t, err)
	assert.Empty(t, a.BlockedIntervals)

	_, err = svc.RemoveBlockedInterval(context.Background(), doctorID, admin, date, schedule.NewTimeOfDay(10, 0))
	require.ErrorIs(t, err, schedule.ErrBlockNotFound)
}

func TestAvailabilityMissingDoctor(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, schedule.ErrAvailabilityNotFound)

	_, err = svc.SetSlotDuration(context.Background(), uuid.New(), adminIdentity(), 30)
	require.ErrorIs(t, err, schedule.ErrAvailabilityNotFound)
}
