package schedule

import "errors"

var (
	ErrAvailabilityNotFound = errors.New("doctor availability not found")
	ErrInvalidTimeFormat    = errors.New("invalid time format")
	ErrInvalidDateFormat    = errors.New("invalid date format")
	ErrInvalidConfig        = errors.New("invalid schedule configuration")
	ErrOverlappingBlock     = errors.New("blocked interval overlaps an existing interval")
	ErrBlockNotFound        = errors.New("blocked interval not found")
)
