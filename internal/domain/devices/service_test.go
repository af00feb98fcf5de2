package devices

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

const (
	userID   = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	deviceID = "phone-1"
)

func registerInput() RegisterInput {
	return RegisterInput{
		UserID:      userID,
		DeviceID:    deviceID,
		DeviceClass: "android",
	}
}

func TestRegisterCreatesSession(t *testing.T) {
	svc := NewService(newFakeDeviceRepo())

	session, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !session.Active {
		t.Fatalf("new session must be active")
	}
	if session.DeviceClass != DeviceClassAndroid {
		t.Fatalf("expected android, got %s", session.DeviceClass)
	}
}

func TestRegisterIsIdempotentPerDevice(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo)

	first, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	token := "push-token-1"
	input := registerInput()
	input.PushToken = &token
	second, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("re-registering must reuse the session row")
	}
	if second.PushToken == nil || *second.PushToken != token {
		t.Fatalf("re-registering must refresh the push token")
	}
	if repo.count() != 1 {
		t.Fatalf("expected one session row, got %d", repo.count())
	}
}

func TestRegisterReactivatesAfterLogout(t *testing.T) {
	svc := NewService(newFakeDeviceRepo())

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.Deactivate(context.Background(), userID, deviceID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	session, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("re-Register failed: %v", err)
	}
	if !session.Active {
		t.Fatalf("registering again must reactivate the session")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeDeviceRepo())

	input := registerInput()
	input.DeviceID = "   "
	if _, err := svc.Register(context.Background(), input); err == nil {
		t.Fatalf("expected an error for a blank device id")
	}

	input = registerInput()
	input.DeviceClass = "smart-fridge"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrUnknownDeviceClass) {
		t.Fatalf("expected ErrUnknownDeviceClass, got %v", err)
	}
}

func TestDeactivateUnknownDevice(t *testing.T) {
	svc := NewService(newFakeDeviceRepo())

	if err := svc.Deactivate(context.Background(), userID, "never-seen"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestMarkPulledStampsSession(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	at := time.Now().UTC()
	if err := svc.MarkPulled(context.Background(), userID, deviceID, at, "v42"); err != nil {
		t.Fatalf("MarkPulled failed: %v", err)
	}

	session, err := svc.Get(context.Background(), userID, deviceID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if session.LastPullAt == nil || !session.LastPullAt.Equal(at) {
		t.Fatalf("pull time not stamped")
	}
	if session.LastDataVersion == nil || *session.LastDataVersion != "v42" {
		t.Fatalf("data version not stamped")
	}
}

type fakeDeviceRepo struct {
	mu       stdsync.Mutex
	sessions map[string]DeviceSession
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{sessions: make(map[string]DeviceSession)}
}

func (r *fakeDeviceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *fakeDeviceRepo) Upsert(_ context.Context, session *DeviceSession) (*DeviceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := session.UserID + "|" + session.DeviceID
	stored, exists := r.sessions[key]
	if !exists {
		stored = *session
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
	} else {
		stored.DeviceClass = session.DeviceClass
		stored.PushToken = session.PushToken
		stored.Active = session.Active
	}
	r.sessions[key] = stored
	copied := stored
	return &copied, nil
}

func (r *fakeDeviceRepo) Get(_ context.Context, user, device string) (*DeviceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[user+"|"+device]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	copied := session
	return &copied, nil
}

func (r *fakeDeviceRepo) ListByUser(_ context.Context, user string) ([]DeviceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []DeviceSession
	for _, session := range r.sessions {
		if session.UserID == user {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) SetActive(_ context.Context, user, device string, active bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := user + "|" + device
	session, ok := r.sessions[key]
	if !ok {
		return false, nil
	}
	session.Active = active
	r.sessions[key] = session
	return true, nil
}

func (r *fakeDeviceRepo) MarkPulled(_ context.Context, user, device string, at time.Time, dataVersion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := user + "|" + device
	session, ok := r.sessions[key]
	if !ok {
		return ErrDeviceNotFound
	}
	session.LastPullAt = &at
	session.LastDataVersion = &dataVersion
	r.sessions[key] = session
	return nil
}

func (r *fakeDeviceRepo) MarkPushed(_ context.Context, user, device string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := user + "|" + device
	session, ok := r.sessions[key]
	if !ok {
		return ErrDeviceNotFound
	}
	session.LastPushAt = &at
	r.sessions[key] = session
	return nil
}
