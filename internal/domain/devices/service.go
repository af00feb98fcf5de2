package devices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates the session on the first sync call from a new device and
// reactivates/refreshes it on every later one. Repeated logins update the
// same row; there is at most one session per (user, device) pair.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*DeviceSession, error) {
	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	class, ok := ParseDeviceClass(strings.TrimSpace(input.DeviceClass))
	if !ok {
		return nil, ErrUnknownDeviceClass
	}

	session := &DeviceSession{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		DeviceID:    deviceID,
		DeviceClass: class,
		PushToken:   input.PushToken,
		Active:      true,
	}

	return s.repo.Upsert(ctx, session)
}

func (s *Service) Get(ctx context.Context, userID, deviceID string) (*DeviceSession, error) {
	return s.repo.Get(ctx, userID, deviceID)
}

func (s *Service) List(ctx context.Context, userID string) ([]DeviceSession, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Deactivate soft-disables the session on logout. The row is retained.
func (s *Service) Deactivate(ctx context.Context, userID, deviceID string) error {
	updated, err := s.repo.SetActive(ctx, userID, deviceID, false)
	if err != nil {
		return err
	}
	if !updated {
		return ErrDeviceNotFound
	}
	return nil
}

func (s *Service) MarkPulled(ctx context.Context, userID, deviceID string, at time.Time, dataVersion string) error {
	return s.repo.MarkPulled(ctx, userID, deviceID, at, dataVersion)
}

func (s *Service) MarkPushed(ctx context.Context, userID, deviceID string, at time.Time) error {
	return s.repo.MarkPushed(ctx, userID, deviceID, at)
}
