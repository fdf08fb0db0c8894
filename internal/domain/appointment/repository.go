package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListQuery) (*PagedAppointments, error)

	// UpdateStatus persists a status transition (cancel, complete).
	UpdateStatus(ctx context.Context, a *Appointment) error

	// UpdateSchedule persists a reschedule. The write is conditional on the
	// version the appointment held before Move bumped it; a concurrent
	// modification surfaces as ErrVersionConflict.
	UpdateSchedule(ctx context.Context, a *Appointment) error

	// GetUpcoming returns active appointments starting within the next N
	// hours, used for reminder jobs.
	GetUpcoming(ctx context.Context, withinHours int) ([]*Appointment, error)

	// ActiveTimes lists the slot times of active appointments for a
	// doctor+date, for reconciliation against the booking ledger.
	ActiveTimes(ctx context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error)
}
