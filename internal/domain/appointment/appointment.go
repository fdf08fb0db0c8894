package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

// State transitions possibilities:
//
//	active → cancelled (patient, doctor or admin)
//	active → completed (owning doctor)
//	active → active    (reschedule: new date/time, version bump)
//
// cancelled and completed are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`

	Date schedule.Date      `gorm:"column:date;not null;index:idx_appointments_doctor_date" json:"date"`
	Time schedule.TimeOfDay `gorm:"column:slot_min;not null" json:"time"`

	// FeeAmount is a pricing snapshot captured at booking time, in the
	// smallest currency unit. Immutable thereafter.
	FeeAmount int64 `gorm:"column:fee_amount;not null" json:"fee_amount"`

	// PaymentConfirmed is owned by the payment collaborator, never written
	// by the scheduling core.
	PaymentConfirmed bool `gorm:"column:payment_confirmed;not null;default:false" json:"payment_confirmed"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'active';index" json:"status"`

	// Version is a monotonic counter bumped on every reschedule, used for
	// optimistic concurrency on date/time updates.
	Version int64 `gorm:"column:version;not null;default:1" json:"version"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID `gorm:"column:cancelled_by;type:uuid" json:"cancelled_by,omitempty"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Appointment) TableName() string {
	return "scheduling.appointments"
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusActive:    {StatusCancelled, StatusCompleted},
		StatusCancelled: {},
		StatusCompleted: {},
	}
	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) IsActive() bool {
	return a.Status == StatusActive
}

func (a *Appointment) Cancel(reason string, cancelledBy uuid.UUID) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrNotActive
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	a.CancelledBy = &cancelledBy
	return nil
}

func (a *Appointment) Complete() error {
	if !a.CanTransitionTo(StatusCompleted) {
		return ErrNotActive
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.CompletedAt = &now
	return nil
}

// Move mutates the slot assignment and bumps the version. Callers must have
// reserved the new slot first; the repository enforces the version check.
func (a *Appointment) Move(newDate schedule.Date, newTime schedule.TimeOfDay) error {
	if !a.IsActive() {
		return ErrNotActive
	}
	a.Date = newDate
	a.Time = newTime
	a.Version++
	return nil
}

type BookCommand struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      schedule.Date
	Time      schedule.TimeOfDay
}

type CancelCommand struct {
	Reason      string
	CancelledBy uuid.UUID
}

type RescheduleCommand struct {
	NewDate schedule.Date
	NewTime schedule.TimeOfDay
}

type ListQuery struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *Status
	DateFrom  *schedule.Date
	DateTo    *schedule.Date
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment `json:"appointments"`
	TotalCount   int64          `json:"total_count"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
}
