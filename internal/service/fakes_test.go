package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/ledger"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
)

func adminIdentity() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
}

func doctorIdentity(doctorID uuid.UUID) auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor, DoctorID: &doctorID}
}

func patientIdentity(patientID uuid.UUID) auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RolePatient, PatientID: &patientID}
}

type slotKey struct {
	doctorID uuid.UUID
	date     schedule.Date
	time     schedule.TimeOfDay
}

// memLedger mirrors the storage semantics of the real ledger: reserve is an
// atomic insert-if-absent, release is idempotent.
type memLedger struct {
	mu    sync.Mutex
	slots map[slotKey]uuid.UUID

	reserveErr error
	releaseErr error
}

func newMemLedger() *memLedger {
	return &memLedger{slots: make(map[slotKey]uuid.UUID)}
}

func (l *memLedger) TryReserve(_ context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay, appointmentID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserveErr != nil {
		return l.reserveErr
	}
	key := slotKey{doctorID, date, t}
	if _, taken := l.slots[key]; taken {
		return ledger.ErrSlotTaken
	}
	l.slots[key] = appointmentID
	return nil
}

func (l *memLedger) Release(_ context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.releaseErr != nil {
		return l.releaseErr
	}
	delete(l.slots, slotKey{doctorID, date, t})
	return nil
}

func (l *memLedger) CountForDay(_ context.Context, doctorID uuid.UUID, date schedule.Date) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for key := range l.slots {
		if key.doctorID == doctorID && key.date == date {
			count++
		}
	}
	return count, nil
}

func (l *memLedger) BookedTimes(_ context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	times := []schedule.TimeOfDay{}
	for key := range l.slots {
		if key.doctorID == doctorID && key.date == date {
			times = append(times, key.time)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, nil
}

func (l *memLedger) holds(doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.slots[slotKey{doctorID, date, t}]
	return ok
}

func (l *memLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

type memAppointments struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*appointment.Appointment
	order []uuid.UUID

	createErr         error
	updateScheduleErr error
}

func newMemAppointments() *memAppointments {
	return &memAppointments{byID: make(map[uuid.UUID]*appointment.Appointment)}
}

func (r *memAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *a
	r.byID[a.ID] = &clone
	r.order = append(r.order, a.ID)
	return nil
}

func (r *memAppointments) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memAppointments) List(_ context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*appointment.Appointment{}
	for _, id := range r.order {
		a := r.byID[id]
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.PatientID != nil && a.PatientID != *q.PatientID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		clone := *a
		matched = append(matched, &clone)
	}
	return &appointment.PagedAppointments{
		Appointments: matched,
		TotalCount:   int64(len(matched)),
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

func (r *memAppointments) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	stored.CancelledAt = a.CancelledAt
	stored.CancellationReason = a.CancellationReason
	stored.CancelledBy = a.CancelledBy
	stored.CompletedAt = a.CompletedAt
	return nil
}

func (r *memAppointments) UpdateSchedule(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateScheduleErr != nil {
		return r.updateScheduleErr
	}
	stored, ok := r.byID[a.ID]
	if !ok || stored.Version != a.Version-1 || stored.Status != appointment.StatusActive {
		return appointment.ErrVersionConflict
	}
	stored.Date = a.Date
	stored.Time = a.Time
	stored.Version = a.Version
	return nil
}

func (r *memAppointments) GetUpcoming(_ context.Context, _ int) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*appointment.Appointment{}
	for _, id := range r.order {
		if a := r.byID[id]; a.Status == appointment.StatusActive {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memAppointments) ActiveTimes(_ context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	times := []schedule.TimeOfDay{}
	for _, a := range r.byID {
		if a.DoctorID == doctorID && a.Date == date && a.Status == appointment.StatusActive {
			times = append(times, a.Time)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, nil
}

type memAvailability struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*schedule.DoctorAvailability
}

func newMemAvailability() *memAvailability {
	return &memAvailability{byID: make(map[uuid.UUID]*schedule.DoctorAvailability)}
}

func (r *memAvailability) Create(_ context.Context, a *schedule.DoctorAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[a.DoctorID]; exists {
		return errors.New("availability already exists")
	}
	r.byID[a.DoctorID] = a
	return nil
}

func (r *memAvailability) GetByDoctor(_ context.Context, doctorID uuid.UUID) (*schedule.DoctorAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[doctorID]
	if !ok {
		return nil, schedule.ErrAvailabilityNotFound
	}
	return a, nil
}

func (r *memAvailability) Update(_ context.Context, a *schedule.DoctorAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.DoctorID]; !ok {
		return schedule.ErrAvailabilityNotFound
	}
	r.byID[a.DoctorID] = a
	return nil
}

type memDirectory struct {
	doctors map[uuid.UUID]*Doctor
}

func newMemDirectory(doctors ...*Doctor) *memDirectory {
	d := &memDirectory{doctors: make(map[uuid.UUID]*Doctor)}
	for _, doc := range doctors {
		d.doctors[doc.ID] = doc
	}
	return d
}

func (d *memDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	doc, ok := d.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return doc, nil
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Dispatch(e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

func (n *recordingNotifier) last() (notify.Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return notify.Event{}, false
	}
	return n.events[len(n.events)-1], true
}
