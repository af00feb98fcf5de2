package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotel-ops-go/internal/domain/attendance"
	"hotel-ops-go/internal/domain/bookings"
	"hotel-ops-go/internal/domain/catalog"
	"hotel-ops-go/internal/domain/inventory"
	"hotel-ops-go/internal/domain/leave"
	snapshotdomain "hotel-ops-go/internal/domain/snapshot"
	"hotel-ops-go/internal/domain/staff"
	"hotel-ops-go/internal/domain/tasks"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Transaction runs the pull's reads in one repeatable-read transaction so
// every collection and the data version reflect the same database snapshot.
func (r *PostgresRepository) Transaction(ctx context.Context, fn func(tx snapshotdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// versionedTable describes how one synced table contributes to the change
// token: which column scopes it to the hotel and which expression yields the
// latest modification, deletions included.
type versionedTable struct {
	name        string
	scopeColumn string
	changedExpr string
}

var versionedTables = []versionedTable{
	{"hotels", "id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"room_types", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"rooms", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"rate_plans", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"staff_members", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"bookings", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"staff_tasks", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"attendance_records", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"leave_requests", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"inventory_items", "hotel_id", "GREATEST(updated_at, COALESCE(deleted_at, updated_at))"},
	{"inventory_adjustments", "hotel_id", "created_at"},
}

// DataVersion digests per-table row counts and latest modification times
// into one opaque token. Any insert, update or soft delete in a synced table
// moves the token; identical content always yields the identical token.
//
// The digest is hotel-wide for every role. A change outside a staff or guest
// caller's visible slice moves their token too; that surfaces as an empty
// incremental pull, never as a missed change.
func (r *PostgresRepository) DataVersion(ctx context.Context, hotelID string) (string, error) {
	digest := sha256.New()

	for _, table := range versionedTables {
		var row struct {
			Count  int64     `gorm:"column:count"`
			Latest time.Time `gorm:"column:latest"`
		}

		query := fmt.Sprintf(
			"SELECT COUNT(*) AS count, COALESCE(MAX(%s), 'epoch'::timestamptz) AS latest FROM %s WHERE %s = ?",
			table.changedExpr, table.name, table.scopeColumn,
		)
		if err := r.db.WithContext(ctx).Raw(query, hotelID).Scan(&row).Error; err != nil {
			return "", err
		}

		fmt.Fprintf(digest, "%s:%d:%d;", table.name, row.Count, row.Latest.UTC().UnixNano())
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

func (r *PostgresRepository) Hotel(ctx context.Context, hotelID string) (*catalog.Hotel, error) {
	var hotel catalog.Hotel
	err := r.db.WithContext(ctx).Where("id = ?", hotelID).First(&hotel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hotel, nil
}

// scoped applies the full-vs-incremental read window. since nil reads live
// rows only; since non-nil reads everything touched after it, tombstones
// included, bypassing the soft-delete scope.
func scoped(db *gorm.DB, hotelID string, since *time.Time) *gorm.DB {
	if since == nil {
		return db.Where("hotel_id = ?", hotelID)
	}
	return db.Unscoped().
		Where("hotel_id = ?", hotelID).
		Where("updated_at > ? OR deleted_at > ?", *since, *since)
}

func (r *PostgresRepository) RoomTypes(ctx context.Context, hotelID string, since *time.Time) ([]catalog.RoomType, error) {
	var rows []catalog.RoomType
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Rooms(ctx context.Context, hotelID string, since *time.Time) ([]catalog.Room, error) {
	var rows []catalog.Room
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) RatePlans(ctx context.Context, hotelID string, since *time.Time) ([]catalog.RatePlan, error) {
	var rows []catalog.RatePlan
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Staff(ctx context.Context, hotelID string, since *time.Time) ([]staff.Member, error) {
	var rows []staff.Member
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Bookings(ctx context.Context, hotelID string, since *time.Time) ([]bookings.Booking, error) {
	var rows []bookings.Booking
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) BookingsByGuest(ctx context.Context, hotelID, guestID string, since *time.Time) ([]bookings.Booking, error) {
	var rows []bookings.Booking
	err := scoped(r.db.WithContext(ctx), hotelID, since).
		Where("guest_id = ?", guestID).
		Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Tasks(ctx context.Context, hotelID string, since *time.Time) ([]tasks.Task, error) {
	var rows []tasks.Task
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) TasksByAssignee(ctx context.Context, hotelID, assigneeID string, since *time.Time) ([]tasks.Task, error) {
	var rows []tasks.Task
	err := scoped(r.db.WithContext(ctx), hotelID, since).
		Where("assignee_id = ?", assigneeID).
		Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Attendance(ctx context.Context, hotelID string, since *time.Time) ([]attendance.Record, error) {
	var rows []attendance.Record
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) AttendanceByUser(ctx context.Context, hotelID, userID string, since *time.Time) ([]attendance.Record, error) {
	var rows []attendance.Record
	err := scoped(r.db.WithContext(ctx), hotelID, since).
		Where("user_id = ?", userID).
		Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Leave(ctx context.Context, hotelID string, since *time.Time) ([]leave.Request, error) {
	var rows []leave.Request
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) LeaveByUser(ctx context.Context, hotelID, userID string, since *time.Time) ([]leave.Request, error) {
	var rows []leave.Request
	err := scoped(r.db.WithContext(ctx), hotelID, since).
		Where("user_id = ?", userID).
		Find(&rows).Error
	return rows, err
}

func (r *PostgresRepository) Items(ctx context.Context, hotelID string, since *time.Time) ([]inventory.Item, error) {
	var rows []inventory.Item
	err := scoped(r.db.WithContext(ctx), hotelID, since).Find(&rows).Error
	return rows, err
}

// Adjustments are append-only; the incremental window is created_at based
// and there are no tombstones to deliver.
func (r *PostgresRepository) Adjustments(ctx context.Context, hotelID string, since *time.Time) ([]inventory.Adjustment, error) {
	query := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}

	var rows []inventory.Adjustment
	err := query.Find(&rows).Error
	return rows, err
}
