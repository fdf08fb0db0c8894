package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsForDefaultTemplate(t *testing.T) {
	a := NewDefault(uuid.New())

	buckets := a.SlotsFor(monday)

	// 9:00-12:00 at 30 minutes yields six morning slots.
	assert.Equal(t, []TimeOfDay{
		NewTimeOfDay(9, 0), NewTimeOfDay(9, 30),
		NewTimeOfDay(10, 0), NewTimeOfDay(10, 30),
		NewTimeOfDay(11, 0), NewTimeOfDay(11, 30),
	}, buckets.Morning)

	// 13:00-17:00 at 30 minutes yields eight afternoon slots.
	assert.Len(t, buckets.Afternoon, 8)
	assert.Equal(t, NewTimeOfDay(13, 0), buckets.Afternoon[0])
	assert.Equal(t, NewTimeOfDay(16, 30), buckets.Afternoon[7])

	assert.Empty(t, buckets.Evening)
	assert.NotNil(t, buckets.Evening, "disabled periods render as empty arrays")

	assert.Len(t, buckets.All(), 14)
}

func TestSlotsForClosedDay(t *testing.T) {
	a := NewDefault(uuid.New())
	sunday := NewDate(2026, time.September, 6)

	buckets := a.SlotsFor(sunday)
	assert.Empty(t, buckets.All())
	assert.NotNil(t, buckets.Morning)
	assert.NotNil(t, buckets.Afternoon)
	assert.NotNil(t, buckets.Evening)
}

func TestSlotsForDropsPartialTrailingSlot(t *testing.T) {
	a := NewDefault(uuid.New())
	require.NoError(t, a.SetDaySchedule(time.Monday, DaySchedule{
		Enabled: true,
		Morning: Period{Enabled: true, Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(10, 15)},
	}))

	buckets := a.SlotsFor(monday)

	// The 10:00 slot would spill past 10:15, so only two slots fit.
	assert.Equal(t, []TimeOfDay{NewTimeOfDay(9, 0), NewTimeOfDay(9, 30)}, buckets.Morning)
}

func TestSlotsForExactFit(t *testing.T) {
	a := NewDefault(uuid.New())
	require.NoError(t, a.SetDaySchedule(time.Monday, DaySchedule{
		Enabled: true,
		Morning: Period{Enabled: true, Start: NewTimeOfDay(8, 0), End: NewTimeOfDay(9, 0)},
	}))

	// A slot ending exactly at the period end is included.
	assert.Equal(t, []TimeOfDay{NewTimeOfDay(8, 0), NewTimeOfDay(8, 30)}, a.SlotsFor(monday).Morning)
}

func TestSlotsForCustomDuration(t *testing.T) {
	a := NewDefault(uuid.New())
	require.NoError(t, a.SetSlotDuration(60))
	require.NoError(t, a.SetDaySchedule(time.Monday, DaySchedule{
		Enabled: true,
		Morning: Period{Enabled: true, Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 30)},
	}))

	assert.Equal(t, []TimeOfDay{
		NewTimeOfDay(9, 0), NewTimeOfDay(10, 0), NewTimeOfDay(11, 0),
	}, a.SlotsFor(monday).Morning)
}

func TestSlotBucketsFilter(t *testing.T) {
	a := NewDefault(uuid.New())
	booked := map[TimeOfDay]bool{
		NewTimeOfDay(9, 0):  true,
		NewTimeOfDay(13, 0): true,
	}

	buckets := a.SlotsFor(monday).Filter(func(tod TimeOfDay) bool {
		return !booked[tod]
	})

	assert.NotContains(t, buckets.Morning, NewTimeOfDay(9, 0))
	assert.NotContains(t, buckets.Afternoon, NewTimeOfDay(13, 0))
	assert.Len(t, buckets.All(), 12)
}
