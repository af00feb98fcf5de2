package leave

import "errors"

var (
	ErrRequestNotFound   = errors.New("leave request not found")
	ErrStaleVersion      = errors.New("leave request version is stale")
	ErrInvalidDateRange  = errors.New("leave end date must not precede start date")
	ErrInvalidTransition = errors.New("invalid leave status transition")
)
