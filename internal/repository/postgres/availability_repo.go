package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *schedule.DoctorAvailability) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("creating availability: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*schedule.DoctorAvailability, error) {
	var a schedule.DoctorAvailability
	err := r.db.WithContext(ctx).First(&a, "doctor_id = ?", doctorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schedule.ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("getting availability: %w", err)
	}
	return &a, nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, a *schedule.DoctorAvailability) error {
	// Struct-based update so the JSON serializer applies to the template
	// and blocked-interval columns.
	err := r.db.WithContext(ctx).
		Model(a).
		Select("weekly_template", "slot_duration_mins", "max_patients_per_day", "blocked_intervals").
		Updates(a).Error
	if err != nil {
		return fmt.Errorf("updating availability: %w", err)
	}
	return nil
}
