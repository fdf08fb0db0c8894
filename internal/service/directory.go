package service

import (
	"context"

	"github.com/google/uuid"
)

// Doctor is the read-only projection the scheduling core needs from the
// doctor directory: whether the doctor takes bookings at all, and the fee
// snapshot to stamp onto new appointments.
type Doctor struct {
	ID        uuid.UUID
	Available bool
	FeeAmount int64
}

// DoctorDirectory is an external collaborator; doctor CRUD lives elsewhere.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
}
