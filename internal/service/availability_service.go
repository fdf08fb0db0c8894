package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
)

// AvailabilityService handles doctor-initiated schedule edits. Every
// mutator validates through the domain model before persisting, so an
// invalid configuration never reaches storage.
type AvailabilityService struct {
	repo schedule.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo schedule.Repository, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, log: log}
}

// EnsureForDoctor creates the default availability for a new doctor
// account, or returns the existing one.
func (s *AvailabilityService) EnsureForDoctor(ctx context.Context, doctorID uuid.UUID) (*schedule.DoctorAvailability, error) {
	existing, err := s.repo.GetByDoctor(ctx, doctorID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, schedule.ErrAvailabilityNotFound) {
		return nil, err
	}

	a := schedule.NewDefault(doctorID)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("created default availability", zap.String("doctor_id", doctorID.String()))
	return a, nil
}

func (s *AvailabilityService) Get(ctx context.Context, doctorID uuid.UUID) (*schedule.DoctorAvailability, error) {
	return s.repo.GetByDoctor(ctx, doctorID)
}

func (s *AvailabilityService) SetWeeklyTemplate(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, template schedule.WeeklyTemplate) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.SetWeeklyTemplate(template)
	})
}

func (s *AvailabilityService) SetDaySchedule(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, day time.Weekday, ds schedule.DaySchedule) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.SetDaySchedule(day, ds)
	})
}

func (s *AvailabilityService) SetSlotDuration(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, minutes int) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.SetSlotDuration(minutes)
	})
}

func (s *AvailabilityService) SetMaxPatientsPerDay(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, n int) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.SetMaxPatientsPerDay(n)
	})
}

func (s *AvailabilityService) AddBlockedInterval(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, b schedule.BlockedInterval) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.AddBlockedInterval(b)
	})
}

func (s *AvailabilityService) RemoveBlockedInterval(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, date schedule.Date, start schedule.TimeOfDay) (*schedule.DoctorAvailability, error) {
	return s.mutate(ctx, doctorID, requester, func(a *schedule.DoctorAvailability) error {
		return a.RemoveBlockedInterval(date, start)
	})
}

func (s *AvailabilityService) mutate(ctx context.Context, doctorID uuid.UUID, requester auth.Identity, apply func(*schedule.DoctorAvailability) error) (*schedule.DoctorAvailability, error) {
	if !requester.IsAdmin() && !requester.ActsForDoctor(doctorID) {
		return nil, ErrForbidden
	}

	a, err := s.repo.GetByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := apply(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
