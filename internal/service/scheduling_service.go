package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/ledger"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
)

// Notifier is the fire-and-forget notification collaborator.
type Notifier interface {
	Dispatch(e notify.Event)
}

// SlotListing is the listAvailableSlots response shape: candidate slots
// minus blocked intervals minus ledger-booked times.
type SlotListing struct {
	Morning   []schedule.TimeOfDay `json:"morning"`
	Afternoon []schedule.TimeOfDay `json:"afternoon"`
	Evening   []schedule.TimeOfDay `json:"evening"`
	All       []schedule.TimeOfDay `json:"all"`
}

func emptyListing() *SlotListing {
	return &SlotListing{
		Morning:   []schedule.TimeOfDay{},
		Afternoon: []schedule.TimeOfDay{},
		Evening:   []schedule.TimeOfDay{},
		All:       []schedule.TimeOfDay{},
	}
}

// SchedulingService orchestrates the booking ledger, availability model and
// appointment state machine. It is the sole writer of appointment status,
// date and time; the reservation path never blocks on I/O to an external
// collaborator.
type SchedulingService struct {
	availability schedule.Repository
	appointments appointment.Repository
	ledger       ledger.Ledger
	directory    DoctorDirectory
	notifier     Notifier
	log          *zap.Logger
}

func NewSchedulingService(
	availability schedule.Repository,
	appointments appointment.Repository,
	l ledger.Ledger,
	directory DoctorDirectory,
	notifier Notifier,
	log *zap.Logger,
) *SchedulingService {
	return &SchedulingService{
		availability: availability,
		appointments: appointments,
		ledger:       l,
		directory:    directory,
		notifier:     notifier,
		log:          log,
	}
}

// BookSlot reserves the slot in the ledger first, then persists the
// appointment. The reserve-then-persist order means a storage failure needs
// a compensating release; the opposite order would allow two appointments
// to share a slot.
func (s *SchedulingService) BookSlot(ctx context.Context, cmd appointment.BookCommand) (*appointment.Appointment, error) {
	if err := validateBookCommand(cmd); err != nil {
		return nil, err
	}
	if cmd.Date.At(cmd.Time).Before(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	doctor, err := s.directory.GetDoctor(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return nil, ErrDoctorUnavailable
	}

	avail, err := s.availability.GetByDoctor(ctx, cmd.DoctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrAvailabilityNotFound) {
			return nil, ErrDoctorUnavailable
		}
		return nil, err
	}
	if !avail.IsBookable(cmd.Date, cmd.Time) {
		return nil, ErrSlotUnavailable
	}

	count, err := s.ledger.CountForDay(ctx, cmd.DoctorID, cmd.Date)
	if err != nil {
		return nil, &TransientError{Op: "book", Err: err}
	}
	if count >= avail.MaxPatientsPerDay {
		return nil, ErrDailyCapacityExceeded
	}

	a := &appointment.Appointment{
		ID:        uuid.New(),
		DoctorID:  cmd.DoctorID,
		PatientID: cmd.PatientID,
		Date:      cmd.Date,
		Time:      cmd.Time,
		FeeAmount: doctor.FeeAmount,
		Status:    appointment.StatusActive,
		Version:   1,
	}

	if err := s.ledger.TryReserve(ctx, cmd.DoctorID, cmd.Date, cmd.Time, a.ID); err != nil {
		if errors.Is(err, ledger.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, &TransientError{Op: "book", Err: err}
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		// The ledger must never hold a reservation with no matching
		// appointment. Compensation runs even when the caller's context
		// is already cancelled.
		s.compensateRelease(ctx, cmd.DoctorID, cmd.Date, cmd.Time)
		return nil, &TransientError{Op: "book", Err: err}
	}

	s.notifier.Dispatch(notify.Event{
		Kind:          notify.KindBooked,
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		RecipientRole: string(auth.RolePatient),
		Date:          a.Date,
		Time:          a.Time,
	})
	return a, nil
}

// CancelAppointment flips the status before releasing the slot: callers
// treat the appointment as the intent-of-record and the ledger as derived
// state, so the slot must never look free while the appointment is still
// active.
func (s *SchedulingService) CancelAppointment(ctx context.Context, id uuid.UUID, requester auth.Identity, reason string) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.mayActOn(requester, a) {
		return ErrForbidden
	}

	if err := a.Cancel(reason, requester.UserID); err != nil {
		return err
	}
	if err := s.appointments.UpdateStatus(ctx, a); err != nil {
		return &TransientError{Op: "cancel", Err: err}
	}

	if err := s.ledger.Release(context.WithoutCancel(ctx), a.DoctorID, a.Date, a.Time); err != nil {
		// The cancel itself committed; a stale reservation only hides the
		// slot until reconciliation, it cannot double-book.
		s.log.Warn("failed to release slot after cancel",
			zap.String("appointment_id", a.ID.String()),
			zap.Error(err),
		)
	}

	s.notifier.Dispatch(notify.Event{
		Kind:          notify.KindCancelled,
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		RecipientRole: counterparty(requester.Role),
		Date:          a.Date,
		Time:          a.Time,
	})
	return nil
}

// CompleteAppointment is a doctor-only transition; the slot stays
// historically consumed, so the ledger is untouched.
func (s *SchedulingService) CompleteAppointment(ctx context.Context, id uuid.UUID, requester auth.Identity) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.ActsForDoctor(a.DoctorID) {
		return ErrForbidden
	}

	if err := a.Complete(); err != nil {
		return err
	}
	if err := s.appointments.UpdateStatus(ctx, a); err != nil {
		return &TransientError{Op: "complete", Err: err}
	}

	s.notifier.Dispatch(notify.Event{
		Kind:          notify.KindCompleted,
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		RecipientRole: string(auth.RolePatient),
		Date:          a.Date,
		Time:          a.Time,
	})
	return nil
}

// RescheduleAppointment reserves the new slot before releasing the old one,
// so the appointment always holds at least one reserved slot. The doctor
// may transiently appear one slot over capacity while both are held.
func (s *SchedulingService) RescheduleAppointment(ctx context.Context, id uuid.UUID, requester auth.Identity, cmd appointment.RescheduleCommand) (*appointment.Appointment, error) {
	if !cmd.NewTime.Valid() || cmd.NewDate.IsZero() {
		return nil, &ValidationError{Fields: []string{"new date and time are required"}}
	}
	if cmd.NewDate.At(cmd.NewTime).Before(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.mayActOn(requester, a) {
		return nil, ErrForbidden
	}
	if !a.IsActive() {
		return nil, appointment.ErrNotActive
	}

	avail, err := s.availability.GetByDoctor(ctx, a.DoctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrAvailabilityNotFound) {
			return nil, ErrDoctorUnavailable
		}
		return nil, err
	}
	if !avail.IsBookable(cmd.NewDate, cmd.NewTime) {
		return nil, ErrSlotUnavailable
	}

	count, err := s.ledger.CountForDay(ctx, a.DoctorID, cmd.NewDate)
	if err != nil {
		return nil, &TransientError{Op: "reschedule", Err: err}
	}
	if cmd.NewDate == a.Date {
		// Same-day move: the appointment's own reservation is part of the
		// count and will be released, so it does not consume capacity.
		count--
	}
	if count >= avail.MaxPatientsPerDay {
		return nil, ErrDailyCapacityExceeded
	}

	// Reserve-new-before-release-old. On conflict the old booking is
	// untouched: reschedule is all-or-nothing on the new slot.
	if err := s.ledger.TryReserve(ctx, a.DoctorID, cmd.NewDate, cmd.NewTime, a.ID); err != nil {
		if errors.Is(err, ledger.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, &TransientError{Op: "reschedule", Err: err}
	}

	oldDate, oldTime := a.Date, a.Time
	if err := a.Move(cmd.NewDate, cmd.NewTime); err != nil {
		s.compensateRelease(ctx, a.DoctorID, cmd.NewDate, cmd.NewTime)
		return nil, err
	}

	if err := s.appointments.UpdateSchedule(ctx, a); err != nil {
		s.compensateRelease(ctx, a.DoctorID, cmd.NewDate, cmd.NewTime)
		if errors.Is(err, appointment.ErrVersionConflict) {
			return nil, err
		}
		return nil, &TransientError{Op: "reschedule", Err: err}
	}

	if err := s.ledger.Release(context.WithoutCancel(ctx), a.DoctorID, oldDate, oldTime); err != nil {
		s.log.Warn("failed to release old slot after reschedule",
			zap.String("appointment_id", a.ID.String()),
			zap.Error(err),
		)
	}

	s.notifier.Dispatch(notify.Event{
		Kind:          notify.KindRescheduled,
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		RecipientRole: "all",
		Date:          a.Date,
		Time:          a.Time,
		OldDate:       &oldDate,
		OldTime:       &oldTime,
	})
	return a, nil
}

// ListAvailableSlots returns generator candidates filtered by blocked
// intervals and ledger-booked times. An unavailable doctor or a closed day
// yields empty buckets, not an error.
func (s *SchedulingService) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date schedule.Date) (*SlotListing, error) {
	doctor, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return emptyListing(), nil
	}

	avail, err := s.availability.GetByDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrAvailabilityNotFound) {
			return emptyListing(), nil
		}
		return nil, err
	}

	bookedTimes, err := s.ledger.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, &TransientError{Op: "list slots", Err: err}
	}
	booked := make(map[schedule.TimeOfDay]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	buckets := avail.SlotsFor(date).Filter(func(t schedule.TimeOfDay) bool {
		return avail.IsOpen(date, t) && !booked[t]
	})
	return &SlotListing{
		Morning:   buckets.Morning,
		Afternoon: buckets.Afternoon,
		Evening:   buckets.Evening,
		All:       buckets.All(),
	}, nil
}

func (s *SchedulingService) GetAppointment(ctx context.Context, id uuid.UUID, requester auth.Identity) (*appointment.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.mayActOn(requester, a) {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *SchedulingService) ListAppointments(ctx context.Context, q *appointment.ListQuery, requester auth.Identity) (*appointment.PagedAppointments, error) {
	// Patients and doctors only see their own appointments.
	switch requester.Role {
	case auth.RolePatient:
		if requester.PatientID == nil {
			return nil, ErrForbidden
		}
		q.PatientID = requester.PatientID
	case auth.RoleDoctor:
		if requester.DoctorID == nil {
			return nil, ErrForbidden
		}
		q.DoctorID = requester.DoctorID
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.appointments.List(ctx, q)
}

// GetUpcoming feeds reminder jobs; admin-only.
func (s *SchedulingService) GetUpcoming(ctx context.Context, withinHours int, requester auth.Identity) ([]*appointment.Appointment, error) {
	if !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	if withinHours <= 0 {
		withinHours = 24
	}
	return s.appointments.GetUpcoming(ctx, withinHours)
}

func (s *SchedulingService) mayActOn(requester auth.Identity, a *appointment.Appointment) bool {
	return requester.IsAdmin() ||
		requester.ActsForDoctor(a.DoctorID) ||
		requester.ActsForPatient(a.PatientID)
}

// compensateRelease undoes a ledger reservation after a failed write. It
// must run even when the caller's context is cancelled or timed out,
// since that is exactly the partial-failure window it exists for.
func (s *SchedulingService) compensateRelease(ctx context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.ledger.Release(releaseCtx, doctorID, date, t); err != nil {
		s.log.Error("compensating release failed; reservation may be orphaned",
			zap.String("doctor_id", doctorID.String()),
			zap.String("date", date.String()),
			zap.String("time", t.String()),
			zap.Error(err),
		)
	}
}

func counterparty(role auth.Role) string {
	if role == auth.RolePatient {
		return string(auth.RoleDoctor)
	}
	return string(auth.RolePatient)
}

func validateBookCommand(cmd appointment.BookCommand) error {
	var fields []string
	if cmd.DoctorID == uuid.Nil {
		fields = append(fields, "doctor_id is required")
	}
	if cmd.PatientID == uuid.Nil {
		fields = append(fields, "patient_id is required")
	}
	if cmd.Date.IsZero() {
		fields = append(fields, "date is required")
	}
	if !cmd.Time.Valid() {
		fields = append(fields, "time must fall within the day")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
