package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *DoctorAvailability) error
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*DoctorAvailability, error)

	// Update persists the full availability document after a schedule edit.
	Update(ctx context.Context, a *DoctorAvailability) error
}
