package sync

import (
	"context"
	"errors"
	"time"

	attendancedomain "hotel-ops-go/internal/domain/attendance"
)

type AttendanceService interface {
	Create(ctx context.Context, input attendancedomain.CreateInput) (*attendancedomain.Record, error)
	Update(ctx context.Context, input attendancedomain.UpdateInput) (*attendancedomain.Record, error)
	Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error
	Get(ctx context.Context, hotelID, id string) (*attendancedomain.Record, error)
}

type AttendanceHandler struct {
	attendance AttendanceService
}

func NewAttendanceHandler(attendance AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

func (h *AttendanceHandler) EntityType() EntityType {
	return EntityAttendance
}

type attendancePayload struct {
	UserID   *string `json:"user_id"`
	WorkDate *string `json:"work_date"`
	ClockIn  *string `json:"clock_in"`
	ClockOut *string `json:"clock_out"`
	Notes    *string `json:"notes"`
}

func (h *AttendanceHandler) Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot record attendance")
	}

	var payload attendancePayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.WorkDate == nil || payload.ClockIn == nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "work_date and clock_in are required")
	}

	workDate, err := parseDateField(*payload.WorkDate, "work_date")
	if err != nil {
		return nil, err
	}
	clockIn, err := parseTimeField(*payload.ClockIn, "clock_in")
	if err != nil {
		return nil, err
	}
	var clockOut *time.Time
	if payload.ClockOut != nil {
		parsed, err := parseTimeField(*payload.ClockOut, "clock_out")
		if err != nil {
			return nil, err
		}
		clockOut = &parsed
	}

	// Staff clock themselves; only managers record for someone else.
	userID := actor.ID
	if payload.UserID != nil && *payload.UserID != actor.ID {
		if !actor.Role.Manages() {
			return nil, rejectInvalid(ErrorCodeNotPermitted, "cannot record attendance for another user")
		}
		userID = *payload.UserID
	}

	record, err := h.attendance.Create(ctx, attendancedomain.CreateInput{
		HotelID:  actor.HotelID,
		UserID:   userID,
		WorkDate: workDate,
		ClockIn:  clockIn,
		ClockOut: clockOut,
		Notes:    payload.Notes,
	})
	if err != nil {
		return nil, h.mapError(err, nil)
	}

	return &Change{EntityID: record.ID, NewVersion: record.Version}, nil
}

func (h *AttendanceHandler) Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error) {
	var payload attendancePayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.UserID != nil || payload.WorkDate != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "user_id and work_date cannot be changed")
	}

	current, err := h.visibleRecord(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	input := attendancedomain.UpdateInput{
		ID:              entityID,
		HotelID:         actor.HotelID,
		ExpectedVersion: baseVersion,
		Notes:           payload.Notes,
	}
	if payload.ClockIn != nil {
		clockIn, err := parseTimeField(*payload.ClockIn, "clock_in")
		if err != nil {
			return nil, err
		}
		input.ClockIn = &clockIn
	}
	if payload.ClockOut != nil {
		clockOut, err := parseTimeField(*payload.ClockOut, "clock_out")
		if err != nil {
			return nil, err
		}
		input.ClockOut = &clockOut
	}

	record, err := h.attendance.Update(ctx, input)
	if err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: record.ID, NewVersion: record.Version}, nil
}

func (h *AttendanceHandler) Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error) {
	current, err := h.visibleRecord(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	if err := h.attendance.Delete(ctx, actor.HotelID, entityID, baseVersion); err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: entityID, NewVersion: current.Version + 1}, nil
}

func (h *AttendanceHandler) visibleRecord(ctx context.Context, actor Actor, entityID string) (*attendancedomain.Record, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot record attendance")
	}
	record, err := h.attendance.Get(ctx, actor.HotelID, entityID)
	if err != nil {
		return nil, h.mapError(err, nil)
	}
	if !actor.Role.Manages() && record.UserID != actor.ID {
		return nil, rejectInvalid(ErrorCodeEntityNotFound, "attendance record not found")
	}
	return record, nil
}

func (h *AttendanceHandler) mapError(err error, serverVersion *int64) error {
	switch {
	case errors.Is(err, attendancedomain.ErrRecordNotFound):
		return rejectInvalid(ErrorCodeEntityNotFound, "attendance record not found")
	case errors.Is(err, attendancedomain.ErrStaleVersion):
		return rejectStale(serverVersion)
	case errors.Is(err, attendancedomain.ErrDuplicateDay):
		return rejectInvalid(ErrorCodeDuplicateAttendanceDay, "attendance for this day already exists")
	case errors.Is(err, attendancedomain.ErrInvalidClockRange):
		return rejectInvalid(ErrorCodeInvalidDateRange, "clock-out must be after clock-in")
	default:
		return err
	}
}
