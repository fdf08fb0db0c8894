package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorUnavailable = errors.New("doctor is not accepting appointments")

	// ErrSlotUnavailable covers already-booked, outside-schedule and
	// blocked slots alike: the caller's remedy is the same, pick another.
	ErrSlotUnavailable = errors.New("slot is not available")

	ErrDailyCapacityExceeded = errors.New("doctor's daily patient capacity is exhausted")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// TransientError wraps a storage failure that occurred after any ledger
// reservation was compensated. Retrying the operation with the same inputs
// is safe: either the slot was never reserved, or it was reserved and then
// released on rollback.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
