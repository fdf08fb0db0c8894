package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotActive           = errors.New("appointment is not active")
	ErrScheduledInPast     = errors.New("cannot book a slot in the past")
	ErrVersionConflict     = errors.New("appointment was modified concurrently")
)
