package attendance

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"
	"time"
)

const (
	hotelID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	userID  = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
)

func workDay() time.Time {
	return time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
}

func createInput(clockIn time.Time, clockOut *time.Time) CreateInput {
	return CreateInput{
		HotelID:  hotelID,
		UserID:   userID,
		WorkDate: workDay(),
		ClockIn:  clockIn,
		ClockOut: clockOut,
	}
}

func TestCreateRecord(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.Version != 1 {
		t.Fatalf("expected version 1, got %d", record.Version)
	}
	if record.ClockOut != nil {
		t.Fatalf("open shift must have no clock-out")
	}
}

func TestCreateRecordDuplicateDay(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	if _, err := svc.Create(context.Background(), createInput(clockIn, nil)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create(context.Background(), createInput(clockIn.Add(time.Hour), nil))
	if !errors.Is(err, ErrDuplicateDay) {
		t.Fatalf("expected ErrDuplicateDay, got %v", err)
	}
}

func TestCreateRecordAfterDeleteSameDay(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), hotelID, record.ID, &record.Version); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The tombstoned row no longer blocks the day.
	if _, err := svc.Create(context.Background(), createInput(clockIn, nil)); err != nil {
		t.Fatalf("re-creating after delete failed: %v", err)
	}
}

func TestCreateRecordInvalidClockRange(t *testing.T) {
	svc := NewService(newFakeAttendanceRepo())

	clockIn := workDay().Add(8 * time.Hour)
	clockOut := clockIn.Add(-time.Hour)
	if _, err := svc.Create(context.Background(), createInput(clockIn, &clockOut)); !errors.Is(err, ErrInvalidClockRange) {
		t.Fatalf("expected ErrInvalidClockRange, got %v", err)
	}

	same := clockIn
	if _, err := svc.Create(context.Background(), createInput(clockIn, &same)); !errors.Is(err, ErrInvalidClockRange) {
		t.Fatalf("expected ErrInvalidClockRange for a zero-length shift, got %v", err)
	}
}

func TestUpdateRecordClockOut(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clockOut := clockIn.Add(8 * time.Hour)
	updated, err := svc.Update(context.Background(), UpdateInput{
		ID:              record.ID,
		HotelID:         hotelID,
		ExpectedVersion: &record.Version,
		ClockOut:        &clockOut,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ClockOut == nil || !updated.ClockOut.Equal(clockOut) {
		t.Fatalf("clock-out not recorded")
	}
	if updated.Version != record.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestUpdateRecordClockOutBeforeClockIn(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clockOut := clockIn.Add(-time.Minute)
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              record.ID,
		HotelID:         hotelID,
		ExpectedVersion: &record.Version,
		ClockOut:        &clockOut,
	})
	if !errors.Is(err, ErrInvalidClockRange) {
		t.Fatalf("expected ErrInvalidClockRange, got %v", err)
	}
}

func TestUpdateRecordStaleVersion(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := record.Version + 3
	clockOut := clockIn.Add(time.Hour)
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              record.ID,
		HotelID:         hotelID,
		ExpectedVersion: &stale,
		ClockOut:        &clockOut,
	})
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestDeleteRecordStaleVersion(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo)

	clockIn := workDay().Add(8 * time.Hour)
	record, err := svc.Create(context.Background(), createInput(clockIn, nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := record.Version + 1
	if err := svc.Delete(context.Background(), hotelID, record.ID, &stale); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

type fakeAttendanceRepo struct {
	mu      stdsync.Mutex
	records map[string]Record
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]Record)}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.records {
		if stored.UserID == record.UserID && stored.WorkDate.Equal(record.WorkDate) && !stored.DeletedAt.Valid {
			return ErrDuplicateDay
		}
	}
	if _, ok := r.records[record.ID]; ok {
		return fmt.Errorf("duplicate record id %s", record.ID)
	}
	r.records[record.ID] = *record
	return nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, hotel, id string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || record.HotelID != hotel || record.DeletedAt.Valid {
		return nil, ErrRecordNotFound
	}
	copied := record
	return &copied, nil
}

func (r *fakeAttendanceRepo) UpdateGuarded(_ context.Context, record *Record, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[record.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	r.records[record.ID] = *record
	return true, nil
}

func (r *fakeAttendanceRepo) SoftDeleteGuarded(_ context.Context, hotel, id string, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[id]
	if !ok || stored.HotelID != hotel || stored.Version != expectedVersion {
		return false, nil
	}
	stored.Version++
	stored.DeletedAt.Time = time.Now().UTC()
	stored.DeletedAt.Valid = true
	r.records[id] = stored
	return true, nil
}
