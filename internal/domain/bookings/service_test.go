package bookings

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
	roomA   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	roomB   = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	guestID = "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
)

func day(offset int) time.Time {
	return time.Date(2026, time.September, 1+offset, 0, 0, 0, 0, time.UTC)
}

func createInput(roomID string, checkIn, checkOut time.Time) CreateInput {
	return CreateInput{
		HotelID:   hotelID,
		RoomID:    roomID,
		GuestID:   guestID,
		GuestName: "A. Guest",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	}
}

func TestCreateBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if booking.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", booking.Status)
	}
	if booking.Version != 1 {
		t.Fatalf("expected version 1, got %d", booking.Version)
	}
	if repo.lockCalls != 1 {
		t.Fatalf("expected the room lock to be taken, got %d calls", repo.lockCalls)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3))); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"identical range", day(0), day(3)},
		{"starts inside", day(1), day(5)},
		{"ends inside", day(-2), day(1)},
		{"swallows existing", day(-1), day(4)},
		{"contained", day(1), day(2)},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), createInput(roomA, tc.checkIn, tc.checkOut))
		if !errors.Is(err, ErrRoomUnavailable) {
			t.Fatalf("%s: expected ErrRoomUnavailable, got %v", tc.name, err)
		}
	}
}

func TestCreateBookingBackToBackAllowed(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3))); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Check-out day equals check-in day of the next stay; no conflict.
	if _, err := svc.Create(context.Background(), createInput(roomA, day(3), day(5))); err != nil {
		t.Fatalf("back-to-back Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), createInput(roomA, day(-2), day(0))); err != nil {
		t.Fatalf("preceding back-to-back Create failed: %v", err)
	}
}

func TestCreateBookingOtherRoomUnaffected(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3))); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), createInput(roomB, day(0), day(3))); err != nil {
		t.Fatalf("Create on another room failed: %v", err)
	}
}

func TestCreateBookingCancelledDoesNotBlock(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Cancel(context.Background(), hotelID, booking.ID, &booking.Version); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3))); err != nil {
		t.Fatalf("Create over a cancelled booking failed: %v", err)
	}
}

func TestCreateBookingInvalidDateRange(t *testing.T) {
	svc := NewService(newFakeBookingRepo())

	if _, err := svc.Create(context.Background(), createInput(roomA, day(3), day(3))); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange for zero nights, got %v", err)
	}
	if _, err := svc.Create(context.Background(), createInput(roomA, day(3), day(0))); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange for reversed range, got %v", err)
	}
}

func TestUpdateBookingStaleVersion(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := booking.Version - 1
	name := "Renamed"
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &stale,
		GuestName:       &name,
	})
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestUpdateBookingNilVersionBypassesGuard(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "Override"
	updated, err := svc.Update(context.Background(), UpdateInput{
		ID:        booking.ID,
		HotelID:   hotelID,
		GuestName: &name,
	})
	if err != nil {
		t.Fatalf("Update without expected version failed: %v", err)
	}
	if updated.Version != booking.Version+1 {
		t.Fatalf("expected version bump to %d, got %d", booking.Version+1, updated.Version)
	}
}

func TestUpdateBookingMoveRejectsOverlap(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3))); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := svc.Create(context.Background(), createInput(roomB, day(0), day(3)))
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	move := roomA
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              second.ID,
		HotelID:         hotelID,
		ExpectedVersion: &second.Version,
		RoomID:          &move,
	})
	if !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("expected ErrRoomUnavailable when moving onto an occupied room, got %v", err)
	}
}

func TestUpdateBookingShiftDatesExcludesSelf(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Extending the stay overlaps only the booking itself.
	newOut := day(5)
	updated, err := svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &booking.Version,
		CheckOut:        &newOut,
	})
	if err != nil {
		t.Fatalf("extending the own stay failed: %v", err)
	}
	if !updated.CheckOut.Equal(newOut) {
		t.Fatalf("check-out not updated")
	}
}

func TestUpdateBookingTransitions(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	checkedIn := StatusCheckedIn
	updated, err := svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &booking.Version,
		Status:          &checkedIn,
	})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	checkedOut := StatusCheckedOut
	updated, err = svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &updated.Version,
		Status:          &checkedOut,
	})
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}

	// checked_out is terminal.
	confirmed := StatusConfirmed
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &updated.Version,
		Status:          &confirmed,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from checked_out, got %v", err)
	}
}

func TestUpdateBookingSkipsConfirmedToCheckedOut(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	checkedOut := StatusCheckedOut
	_, err = svc.Update(context.Background(), UpdateInput{
		ID:              booking.ID,
		HotelID:         hotelID,
		ExpectedVersion: &booking.Version,
		Status:          &checkedOut,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for confirmed to checked_out, got %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Cancel(context.Background(), hotelID, booking.ID, &booking.Version); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	stored := repo.get(booking.ID)
	if stored.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
	if !stored.DeletedAt.Valid {
		t.Fatalf("expected a tombstone on the cancelled booking")
	}
}

func TestCancelBookingStaleVersion(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := booking.Version + 5
	if err := svc.Cancel(context.Background(), hotelID, booking.ID, &stale); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestCancelCheckedOutBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	booking, err := svc.Create(context.Background(), createInput(roomA, day(0), day(3)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	checkedIn := StatusCheckedIn
	updated, err := svc.Update(context.Background(), UpdateInput{
		ID: booking.ID, HotelID: hotelID, ExpectedVersion: &booking.Version, Status: &checkedIn,
	})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	checkedOut := StatusCheckedOut
	updated, err = svc.Update(context.Background(), UpdateInput{
		ID: booking.ID, HotelID: hotelID, ExpectedVersion: &updated.Version, Status: &checkedOut,
	})
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}

	if err := svc.Cancel(context.Background(), hotelID, booking.ID, &updated.Version); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition cancelling a checked-out stay, got %v", err)
	}
}

func TestOverlapWindow(t *testing.T) {
	if !OverlapWindow(day(0), day(3), day(2), day(5)) {
		t.Fatalf("expected overlap for intersecting ranges")
	}
	if OverlapWindow(day(0), day(3), day(3), day(5)) {
		t.Fatalf("half-open ranges sharing a boundary must not overlap")
	}
	if OverlapWindow(day(5), day(7), day(0), day(3)) {
		t.Fatalf("disjoint ranges must not overlap")
	}
}

type fakeBookingRepo struct {
	mu        stdsync.Mutex
	bookings  map[string]Booking
	lockCalls int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]Booking)}
}

func (r *fakeBookingRepo) get(id string) Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

func (r *fakeBookingRepo) Transaction(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeBookingRepo) LockRoom(_ context.Context, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockCalls++
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, hotel, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok || booking.HotelID != hotel || booking.DeletedAt.Valid {
		return nil, ErrBookingNotFound
	}
	copied := booking
	return &copied, nil
}

func (r *fakeBookingRepo) CountOverlapping(_ context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, booking := range r.bookings {
		if booking.RoomID != roomID || booking.ID == excludeID {
			continue
		}
		if !booking.Status.Blocking() || booking.DeletedAt.Valid {
			continue
		}
		if OverlapWindow(checkIn, checkOut, booking.CheckIn, booking.CheckOut) {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; ok {
		return fmt.Errorf("duplicate booking id %s", booking.ID)
	}
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) UpdateGuarded(_ context.Context, booking *Booking, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[booking.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	r.bookings[booking.ID] = *booking
	return true, nil
}

func (r *fakeBookingRepo) CancelGuarded(_ context.Context, hotel, id string, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok || stored.HotelID != hotel || stored.Version != expectedVersion {
		return false, nil
	}
	stored.Status = StatusCancelled
	stored.Version++
	stored.DeletedAt.Time = time.Now().UTC()
	stored.DeletedAt.Valid = true
	r.bookings[id] = stored
	return true, nil
}
