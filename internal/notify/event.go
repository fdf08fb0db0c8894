package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

type Kind string

const (
	KindBooked      Kind = "appointment.booked"
	KindCancelled   Kind = "appointment.cancelled"
	KindCompleted   Kind = "appointment.completed"
	KindRescheduled Kind = "appointment.rescheduled"
)

// Event describes a committed scheduling state change. Dispatch is
// fire-and-forget: delivery failure never unwinds the booking it announces.
type Event struct {
	Kind          Kind      `json:"kind"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	PatientID     uuid.UUID `json:"patient_id"`

	// RecipientRole names the counter-party to notify: the patient when a
	// doctor or admin acted, the doctor otherwise.
	RecipientRole string `json:"recipient_role"`

	Date schedule.Date      `json:"date"`
	Time schedule.TimeOfDay `json:"time"`

	// Old slot values, set only for reschedules.
	OldDate *schedule.Date      `json:"old_date,omitempty"`
	OldTime *schedule.TimeOfDay `json:"old_time,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
