package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	devicesdomain "hotel-ops-go/internal/domain/devices"
	"hotel-ops-go/internal/domain/synclog"
)

type DevicesService interface {
	Register(ctx context.Context, input devicesdomain.RegisterInput) (*devicesdomain.DeviceSession, error)
	MarkPulled(ctx context.Context, userID, deviceID string, at time.Time, dataVersion string) error
}

// incrementalOverlap widens the read window behind the client's cursor.
// updated_at is stamped before a write commits, so a row committed while the
// previous pull was reading can carry a stamp earlier than that pull's server
// time. Rows inside the margin are re-delivered and the client upserts them.
const incrementalOverlap = time.Minute

type Service struct {
	repo    Repository
	devices DevicesService
	log     synclog.Repository
}

func NewService(repo Repository, devices DevicesService, log synclog.Repository) *Service {
	return &Service{repo: repo, devices: devices, log: log}
}

// Pull assembles the role-scoped snapshot for one device. The first pull from
// a device registers its session. All collection reads run in one read
// transaction, so every slice reflects the same instant and the returned
// data version matches the content.
//
// Mode selection: no lastSyncTime or an unknown client token means full; a
// client token equal to the current one means not_modified; anything else is
// incremental with tombstones.
func (s *Service) Pull(ctx context.Context, input PullInput) (*Snapshot, error) {
	session, err := s.devices.Register(ctx, devicesdomain.RegisterInput{
		UserID:      input.Actor.ID,
		DeviceID:    input.DeviceID,
		DeviceClass: input.DeviceClass,
		PushToken:   input.PushToken,
	})
	if err != nil {
		return nil, err
	}

	kind := synclog.KindPull
	if session.LastPullAt == nil {
		kind = synclog.KindInitial
	}

	startedAt := time.Now().UTC()
	logEntry := &synclog.Entry{
		ID:        uuid.NewString(),
		UserID:    input.Actor.ID,
		DeviceID:  input.DeviceID,
		Kind:      kind,
		Status:    synclog.StatusInProgress,
		StartedAt: startedAt,
	}
	logAppended := s.log.Append(ctx, logEntry) == nil

	snapshot := Snapshot{}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		dataVersion, err := tx.DataVersion(ctx, input.Actor.HotelID)
		if err != nil {
			return err
		}
		snapshot.DataVersion = dataVersion

		if input.DataVersion != "" && input.DataVersion == dataVersion {
			snapshot.Mode = ModeNotModified
			return nil
		}

		var since *time.Time
		snapshot.Mode = ModeFull
		if input.LastSyncTime != nil && input.DataVersion != "" {
			overlapped := input.LastSyncTime.Add(-incrementalOverlap).UTC()
			since = &overlapped
			snapshot.Mode = ModeIncremental
		}

		return s.fill(ctx, tx, input.Actor, since, &snapshot.Collections)
	})
	if err != nil {
		if logAppended {
			summary := err.Error()
			_ = s.log.Finalize(ctx, logEntry.ID, time.Now().UTC(), synclog.StatusFailed, 0, 0, &summary)
		}
		return nil, err
	}

	snapshot.ServerTime = time.Now().UTC()

	if logAppended {
		_ = s.log.Finalize(ctx, logEntry.ID, time.Now().UTC(), synclog.StatusSuccess, 0, 0, nil)
	}
	_ = s.devices.MarkPulled(ctx, input.Actor.ID, input.DeviceID, snapshot.ServerTime, snapshot.DataVersion)

	return &snapshot, nil
}

// fill loads the collection matrix for the actor's role. Reference data goes
// to everyone; managers see the whole hotel; staff see their own operational
// rows; guests see only their own bookings.
func (s *Service) fill(ctx context.Context, tx Repository, actor Actor, since *time.Time, out *Collections) error {
	var err error

	if out.Hotel, err = tx.Hotel(ctx, actor.HotelID); err != nil {
		return err
	}
	if out.RoomTypes, err = tx.RoomTypes(ctx, actor.HotelID, since); err != nil {
		return err
	}
	if out.Rooms, err = tx.Rooms(ctx, actor.HotelID, since); err != nil {
		return err
	}
	if out.RatePlans, err = tx.RatePlans(ctx, actor.HotelID, since); err != nil {
		return err
	}

	switch {
	case actor.Role.Manages():
		if out.Staff, err = tx.Staff(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Bookings, err = tx.Bookings(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Tasks, err = tx.Tasks(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Attendance, err = tx.Attendance(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Leave, err = tx.Leave(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Items, err = tx.Items(ctx, actor.HotelID, since); err != nil {
			return err
		}
		if out.Ledger, err = tx.Adjustments(ctx, actor.HotelID, since); err != nil {
			return err
		}

	case actor.Role == RoleStaff:
		if out.Tasks, err = tx.TasksByAssignee(ctx, actor.HotelID, actor.ID, since); err != nil {
			return err
		}
		if out.Attendance, err = tx.AttendanceByUser(ctx, actor.HotelID, actor.ID, since); err != nil {
			return err
		}
		if out.Leave, err = tx.LeaveByUser(ctx, actor.HotelID, actor.ID, since); err != nil {
			return err
		}

	case actor.Role == RoleGuest:
		if out.Bookings, err = tx.BookingsByGuest(ctx, actor.HotelID, actor.ID, since); err != nil {
			return err
		}
	}

	return nil
}
