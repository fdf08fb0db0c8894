package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/ledger"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

const defaultLedgerRetries = 5

// LedgerRepository enforces slot exclusivity through the unique
// (doctor_id, date, slot_min) index on slot_reservations: the insert either
// lands or fails with a duplicate-key error, there is no read-check-write
// window. Mutations for different (doctor, date) pairs never contend.
type LedgerRepository struct {
	db         *gorm.DB
	log        *zap.Logger
	maxRetries int
}

func NewLedgerRepository(db *gorm.DB, log *zap.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, log: log, maxRetries: defaultLedgerRetries}
}

// WithMaxRetries bounds the transient-error retry loop.
func (r *LedgerRepository) WithMaxRetries(n int) *LedgerRepository {
	if n > 0 {
		r.maxRetries = n
	}
	return r
}

func (r *LedgerRepository) TryReserve(ctx context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay, appointmentID uuid.UUID) error {
	res := &ledger.Reservation{
		DoctorID:      doctorID,
		Date:          date,
		Time:          t,
		AppointmentID: appointmentID,
	}

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.db.WithContext(ctx).Create(res).Error
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ledger.ErrSlotTaken
		case ctx.Err() != nil:
			return ctx.Err()
		}

		lastErr = err
		r.log.Warn("ledger reserve retry",
			zap.Int("attempt", attempt+1),
			zap.String("doctor_id", doctorID.String()),
			zap.String("date", date.String()),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}

	// Retries exhausted under contention or storage trouble: report the
	// slot as taken rather than leaking an internal error. The caller
	// offers a different slot either way.
	r.log.Error("ledger reserve retries exhausted, assuming slot taken", zap.Error(lastErr))
	return ledger.ErrSlotTaken
}

func (r *LedgerRepository) Release(ctx context.Context, doctorID uuid.UUID, date schedule.Date, t schedule.TimeOfDay) error {
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND slot_min = ?", doctorID, date, t).
		Delete(&ledger.Reservation{}).Error
	if err != nil {
		return fmt.Errorf("releasing slot: %w", err)
	}
	return nil
}

func (r *LedgerRepository) CountForDay(ctx context.Context, doctorID uuid.UUID, date schedule.Date) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ledger.Reservation{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting reservations: %w", err)
	}
	return int(count), nil
}

func (r *LedgerRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date schedule.Date) ([]schedule.TimeOfDay, error) {
	var times []schedule.TimeOfDay
	err := r.db.WithContext(ctx).
		Model(&ledger.Reservation{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("slot_min ASC").
		Pluck("slot_min", &times).Error
	if err != nil {
		return nil, fmt.Errorf("listing booked times: %w", err)
	}
	return times, nil
}
