// Package ledger defines the booking ledger: the per-doctor, per-date set
// of slot times already committed to an appointment. It is the single place
// where the double-booking invariant is enforced, so TryReserve must be
// observably atomic: two concurrent calls for the same slot never both
// succeed.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

var ErrSlotTaken = errors.New("slot is already reserved")

// Reservation is one committed slot. The unique (doctor_id, date, slot_min)
// index is what turns TryReserve into a storage-native insert-if-absent.
type Reservation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	DoctorID uuid.UUID          `gorm:"column:doctor_id;type:uuid;not null;uniqueIndex:ux_reservations_slot"`
	Date     schedule.Date      `gorm:"column:date;not null;uniqueIndex:ux_reservations_slot"`
	Time     schedule.TimeOfDay `gorm:"column:slot_min;not null;uniqueIndex:ux_reservations_slot"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`
}

func (Reservation) TableName() string {
	return "scheduling.slot_reservations"
}

type Ledger interface {
	// TryReserve atomically tests that the slot is free and claims it for
	// the given appointment. ErrSlotTaken when it is already held.
	TryReserve(ctx context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay, appointmentID uuid.UUID) error

	// Release removes the slot from the ledger. Idempotent: releasing an
	// absent slot is a no-op, not an error.
	Release(ctx context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay) error

	// CountForDay reports how many slots are reserved for the doctor+date,
	// used to enforce the daily patient cap.
	CountForDay(ctx context.Context, doctorID uuid.UUID, date schedule.Date) (int, error)

	// BookedTimes lists the reserved slot times for a doctor+date in
	// chronological order.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error)
}
