package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("getting appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	query := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		query = query.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("date <= ?", *q.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var appts []*appointment.Appointment
	offset := (q.Page - 1) * q.PageSize
	err := query.
		Order("date DESC, slot_min DESC").
		Offset(offset).
		Limit(q.PageSize).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: appts,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
	}, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":              a.Status,
			"cancelled_at":        a.CancelledAt,
			"cancellation_reason": a.CancellationReason,
			"cancelled_by":        a.CancelledBy,
			"completed_at":        a.CompletedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("updating appointment status: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, a *appointment.Appointment) error {
	// Conditional on the pre-Move version so a concurrent cancel or
	// reschedule cannot be silently overwritten.
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ? AND version = ? AND status = ?", a.ID, a.Version-1, appointment.StatusActive).
		Updates(map[string]any{
			"date":     a.Date,
			"slot_min": a.Time,
			"version":  a.Version,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrVersionConflict
	}
	return nil
}

func (r *AppointmentRepository) GetUpcoming(ctx context.Context, withinHours int) ([]*appointment.Appointment, error) {
	now := time.Now()
	from := schedule.DateOf(now)
	to := schedule.DateOf(now.Add(time.Duration(withinHours) * time.Hour))

	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ? AND date >= ? AND date <= ?", appointment.StatusActive, from, to).
		Order("date ASC, slot_min ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("listing upcoming appointments: %w", err)
	}

	// Trim same-day entries that already started outside the window.
	upcoming := make([]*appointment.Appointment, 0, len(appts))
	cutoff := now.Add(time.Duration(withinHours) * time.Hour)
	for _, a := range appts {
		startsAt := a.Date.At(a.Time)
		if startsAt.After(now) && startsAt.Before(cutoff) {
			upcoming = append(upcoming, a)
		}
	}
	return upcoming, nil
}

func (r *AppointmentRepository) ActiveTimes(ctx context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error) {
	var times []schedule.TimeOfDay
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status = ?", doctorID, date, appointment.StatusActive).
		Order("slot_min ASC").
		Pluck("slot_min", &times).Error
	if err != nil {
		return nil, fmt.Errorf("listing active appointment times: %w", err)
	}
	return times, nil
}
