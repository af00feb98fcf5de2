package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"

	bookingsdomain "hotel-ops-go/internal/domain/bookings"
)

const (
	roomID       = "ffffffff-ffff-4fff-8fff-ffffffffffff"
	otherGuestID = "99999999-9999-4999-8999-999999999999"
)

func guestActor() Actor {
	actor := managerActor()
	actor.Role = RoleGuest
	actor.Name = "Walk-in Guest"
	return actor
}

func bookingCreateData() map[string]any {
	return map[string]any{
		"room_id":   roomID,
		"guest_id":  otherGuestID,
		"check_in":  "2026-09-01",
		"check_out": "2026-09-04",
	}
}

func TestBookingCreateGuestBooksForThemselves(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	// A guest naming another guest_id is overridden with their own identity.
	change, err := handler.Create(context.Background(), guestActor(), bookingCreateData())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored := bookingsSvc.get(change.EntityID)
	if stored.GuestID != guestActor().ID {
		t.Fatalf("guest bookings must be self-bookings, got guest %s", stored.GuestID)
	}
	if stored.GuestName != guestActor().Name {
		t.Fatalf("expected the actor's name, got %q", stored.GuestName)
	}
}

func TestBookingCreateManagerNamesTheGuest(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	change, err := handler.Create(context.Background(), managerActor(), bookingCreateData())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if bookingsSvc.get(change.EntityID).GuestID != otherGuestID {
		t.Fatalf("manager create must keep the named guest")
	}

	data := bookingCreateData()
	delete(data, "guest_id")
	_, err = handler.Create(context.Background(), managerActor(), data)
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Code != ErrorCodeInvalidPayload {
		t.Fatalf("expected invalid_payload without guest_id, got %v", err)
	}
}

func TestBookingCreateRejectsStatusField(t *testing.T) {
	handler := NewBookingHandler(newFakeBookingsService())

	data := bookingCreateData()
	data["status"] = "checked_in"
	_, err := handler.Create(context.Background(), managerActor(), data)
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Status != OutcomeRejectedMalformed {
		t.Fatalf("expected rejected_malformed for status on create, got %v", err)
	}
}

func TestBookingCreateRejectsUnknownFields(t *testing.T) {
	handler := NewBookingHandler(newFakeBookingsService())

	data := bookingCreateData()
	data["minibar_credit"] = 25
	_, err := handler.Create(context.Background(), managerActor(), data)
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Code != ErrorCodeInvalidPayload {
		t.Fatalf("expected invalid_payload for an unknown field, got %v", err)
	}
}

func TestBookingCreateRejectsBadDate(t *testing.T) {
	handler := NewBookingHandler(newFakeBookingsService())

	data := bookingCreateData()
	data["check_in"] = "01/09/2026"
	_, err := handler.Create(context.Background(), managerActor(), data)
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Status != OutcomeRejectedMalformed {
		t.Fatalf("expected rejected_malformed for a bad date, got %v", err)
	}
}

func TestBookingUpdateForbidsGuestChange(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	booking := bookingsSvc.seed(otherGuestID, 1)

	baseVersion := int64(1)
	_, err := handler.Update(context.Background(), managerActor(), booking.ID, &baseVersion, map[string]any{
		"guest_id": managerActor().ID,
	})
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Status != OutcomeRejectedMalformed {
		t.Fatalf("expected rejected_malformed changing guest_id, got %v", err)
	}
}

func TestBookingUpdateHidesForeignBookingFromGuest(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	booking := bookingsSvc.seed(otherGuestID, 1)

	baseVersion := int64(1)
	_, err := handler.Update(context.Background(), guestActor(), booking.ID, &baseVersion, map[string]any{
		"notes": "late arrival",
	})
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Code != ErrorCodeEntityNotFound {
		t.Fatalf("another guest's booking must read as not found, got %v", err)
	}
}

func TestBookingUpdateStaleReportsServerVersion(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	booking := bookingsSvc.seed(otherGuestID, 6)

	staleBase := int64(2)
	_, err := handler.Update(context.Background(), managerActor(), booking.ID, &staleBase, map[string]any{
		"notes": "late arrival",
	})
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Status != OutcomeRejectedStale {
		t.Fatalf("expected rejected_stale, got %v", err)
	}
	if rejection.ServerVersion == nil || *rejection.ServerVersion != 6 {
		t.Fatalf("stale rejection must carry the server version, got %v", rejection.ServerVersion)
	}
}

func TestBookingDeleteCancels(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	handler := NewBookingHandler(bookingsSvc)

	booking := bookingsSvc.seed(otherGuestID, 2)

	baseVersion := int64(2)
	change, err := handler.Delete(context.Background(), managerActor(), booking.ID, &baseVersion)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if change.NewVersion != 3 {
		t.Fatalf("expected version 3 after cancel, got %d", change.NewVersion)
	}
	if bookingsSvc.get(booking.ID).Status != bookingsdomain.StatusCancelled {
		t.Fatalf("delete must cancel the booking")
	}
}

func TestBookingCreateRoomUnavailable(t *testing.T) {
	bookingsSvc := newFakeBookingsService()
	bookingsSvc.unavailable = true
	handler := NewBookingHandler(bookingsSvc)

	_, err := handler.Create(context.Background(), managerActor(), bookingCreateData())
	var rejection *Rejection
	if !errors.As(err, &rejection) || rejection.Code != ErrorCodeRoomUnavailable {
		t.Fatalf("expected room_unavailable, got %v", err)
	}
	if rejection.Status != OutcomeRejectedInvalid {
		t.Fatalf("room_unavailable is a business rejection, got %s", rejection.Status)
	}
}

type fakeBookingsService struct {
	mu          stdsync.Mutex
	seq         int
	unavailable bool
	bookings    map[string]bookingsdomain.Booking
}

func newFakeBookingsService() *fakeBookingsService {
	return &fakeBookingsService{bookings: make(map[string]bookingsdomain.Booking)}
}

func (f *fakeBookingsService) get(id string) bookingsdomain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[id]
}

func (f *fakeBookingsService) seed(guestID string, version int64) bookingsdomain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	booking := bookingsdomain.Booking{
		ID:      fmt.Sprintf("88888888-8888-4888-8888-%012d", f.seq),
		HotelID: testHotelID,
		RoomID:  roomID,
		GuestID: guestID,
		Status:  bookingsdomain.StatusConfirmed,
		Version: version,
	}
	f.bookings[booking.ID] = booking
	return booking
}

func (f *fakeBookingsService) Create(_ context.Context, input bookingsdomain.CreateInput) (*bookingsdomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unavailable {
		return nil, bookingsdomain.ErrRoomUnavailable
	}

	f.seq++
	booking := bookingsdomain.Booking{
		ID:        fmt.Sprintf("88888888-8888-4888-8888-%012d", f.seq),
		HotelID:   input.HotelID,
		RoomID:    input.RoomID,
		GuestID:   input.GuestID,
		GuestName: input.GuestName,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Status:    bookingsdomain.StatusConfirmed,
		Notes:     input.Notes,
		Version:   1,
	}
	f.bookings[booking.ID] = booking
	copied := booking
	return &copied, nil
}

func (f *fakeBookingsService) Update(_ context.Context, input bookingsdomain.UpdateInput) (*bookingsdomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[input.ID]
	if !ok {
		return nil, bookingsdomain.ErrBookingNotFound
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != booking.Version {
		return nil, bookingsdomain.ErrStaleVersion
	}

	if input.GuestName != nil {
		booking.GuestName = *input.GuestName
	}
	if input.Notes != nil {
		booking.Notes = input.Notes
	}
	booking.Version++
	f.bookings[input.ID] = booking
	copied := booking
	return &copied, nil
}

func (f *fakeBookingsService) Cancel(_ context.Context, _, id string, expectedVersion *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return bookingsdomain.ErrBookingNotFound
	}
	if expectedVersion != nil && *expectedVersion != booking.Version {
		return bookingsdomain.ErrStaleVersion
	}
	booking.Status = bookingsdomain.StatusCancelled
	booking.Version++
	f.bookings[id] = booking
	return nil
}

func (f *fakeBookingsService) Get(_ context.Context, _, id string) (*bookingsdomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, bookingsdomain.ErrBookingNotFound
	}
	copied := booking
	return &copied, nil
}
