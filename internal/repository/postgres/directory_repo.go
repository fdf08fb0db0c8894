package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
)

// DoctorRecord is the read-only slice of the doctor directory the
// scheduling core consumes; doctor CRUD is owned elsewhere.
type DoctorRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Available bool  `gorm:"column:available;not null;default:true"`
	FeeAmount int64 `gorm:"column:fee_amount;not null;default:0"`
}

func (DoctorRecord) TableName() string {
	return "directory.doctors"
}

type DoctorDirectory struct {
	db *gorm.DB
}

func NewDoctorDirectory(db *gorm.DB) *DoctorDirectory {
	return &DoctorDirectory{db: db}
}

func (d *DoctorDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*service.Doctor, error) {
	var rec DoctorRecord
	err := d.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("getting doctor: %w", err)
	}
	return &service.Doctor{
		ID:        rec.ID,
		Available: rec.Available,
		FeeAmount: rec.FeeAmount,
	}, nil
}
