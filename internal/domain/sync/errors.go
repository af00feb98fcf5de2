package sync

import (
	"errors"
	"fmt"
)

var (
	ErrBatchTooLarge                 = errors.New("sync batch too large")
	ErrIdempotencyKeyPayloadMismatch = errors.New("idempotency key payload mismatch")
	ErrBatchInProgress               = errors.New("sync batch in progress")
	ErrDeviceNotRegistered           = errors.New("device not registered")
	ErrOverrideNotAllowed            = errors.New("conflict override requires a manager role")
	ErrUnknownEntityType             = errors.New("unknown entity type")
)

// Rejection is a typed per-operation failure raised by entity handlers and
// turned into an Outcome by the processor. Anything else bubbling out of a
// handler is treated as a transient store failure and reported retriable.
type Rejection struct {
	Status        OutcomeStatus
	Code          ErrorCode
	Message       string
	ServerVersion *int64
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func rejectStale(serverVersion *int64) *Rejection {
	return &Rejection{
		Status:        OutcomeRejectedStale,
		Code:          ErrorCodeStaleVersion,
		Message:       "server state has moved past the client's known version",
		ServerVersion: serverVersion,
	}
}

func rejectInvalid(code ErrorCode, message string) *Rejection {
	return &Rejection{Status: OutcomeRejectedInvalid, Code: code, Message: message}
}

func rejectMalformed(code ErrorCode, message string) *Rejection {
	return &Rejection{Status: OutcomeRejectedMalformed, Code: code, Message: message}
}

func rejectRetriable(code ErrorCode, message string) *Rejection {
	return &Rejection{Status: OutcomeRejectedRetriable, Code: code, Message: message}
}

func asRejection(err error) *Rejection {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection
	}
	return rejectRetriable(ErrorCodeStoreUnavailable, "operation failed transiently, resubmit unchanged")
}
