package attendance

import "errors"

var (
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrDuplicateDay      = errors.New("attendance already recorded for this day")
	ErrStaleVersion      = errors.New("attendance record version is stale")
	ErrInvalidClockRange = errors.New("clock-out must be after clock-in")
)
