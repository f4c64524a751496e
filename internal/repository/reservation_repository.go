package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation references the requesting user and the reserved room and
// carries the server-computed total price.  All timestamp fields are
// stored in UTC.
//
// The availability check and insertion for a room must be serialized
// against concurrent requests (two overlapping creations racing past
// the check).  Callers open a transaction, take the per-room advisory
// lock via LockRoomTx, run HasOverlapTx and then CreateTx; the lock is
// released automatically when the transaction's connection is returned
// or explicitly via UnlockRoomTx.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// roomLockName builds the advisory lock name for a room.  MySQL named
// locks are connection scoped, which matches a transaction's dedicated
// connection.
func roomLockName(roomID uint64) string {
	return fmt.Sprintf("room_lock_%d", roomID)
}

// LockRoomTx takes the per-room advisory lock inside the transaction.
// It blocks up to the given timeout and returns ErrTimeConflict when
// the lock cannot be obtained, since that means a competing
// reservation attempt holds the room.
func (r *ReservationRepo) LockRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64, timeout time.Duration) error {
	var got sql.NullInt64
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	if err := tx.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, roomLockName(roomID), secs).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return ErrTimeConflict
	}
	return nil
}

// UnlockRoomTx releases the per-room advisory lock.  Failing to
// release is harmless (the lock dies with the connection) so the error
// is returned only for logging.
func (r *ReservationRepo) UnlockRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	var released sql.NullInt64
	return tx.QueryRowContext(ctx, `SELECT RELEASE_LOCK(?)`, roomLockName(roomID)).Scan(&released)
}

// HasOverlapTx reports whether any active (REQUESTED or APPROVED)
// reservation for the room overlaps the half-open candidate range
// [start, end).  excludeID, when non-zero, removes one reservation
// from consideration so edits and re-approvals do not collide with
// themselves.  Rejected and cancelled reservations never occupy the
// timeline, including historically.
func (r *ReservationRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	q := `SELECT EXISTS(
	        SELECT 1 FROM reservations
	        WHERE room_id = ?
	          AND status IN ('REQUESTED','APPROVED')
	          AND starts_at < ?
	          AND ends_at > ?`
	args := []interface{}{roomID, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += `)`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record.  The caller must commit or rollback the
// transaction.  Status should be a valid enumeration value; new
// requests always start as REQUESTED.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (requester_id, room_id, starts_at, ends_at, total_price, payment_method, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.RequesterID, res.RoomID, res.StartsAt, res.EndsAt,
		res.TotalPrice, res.PaymentMethod, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate timestamp defaults
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// ReservationInfo couples a reservation with the context needed for
// authorization decisions and display: the owner of the referenced
// room plus the room and requester names.
type ReservationInfo struct {
	model.Reservation
	RoomOwnerID   uint64
	RoomName      string
	RequesterName string
}

const reservationInfoQuery = `SELECT r.id, r.requester_id, r.room_id, r.starts_at, r.ends_at,
		       r.total_price, r.payment_method, r.status, r.created_at, r.updated_at,
		       rm.owner_id, rm.name, u.name
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		JOIN users u ON u.id = r.requester_id`

func scanReservationInfo(row interface{ Scan(...interface{}) error }) (*ReservationInfo, error) {
	var info ReservationInfo
	if err := row.Scan(
		&info.ID, &info.RequesterID, &info.RoomID, &info.StartsAt, &info.EndsAt,
		&info.TotalPrice, &info.PaymentMethod, &info.Status, &info.CreatedAt, &info.UpdatedAt,
		&info.RoomOwnerID, &info.RoomName, &info.RequesterName,
	); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetByID loads a reservation with its room owner and display names.
// It returns ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*ReservationInfo, error) {
	info, err := scanReservationInfo(r.db.QueryRowContext(ctx, reservationInfoQuery+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return info, nil
}

// GetForUpdateTx is GetByID inside a transaction with the reservation
// row locked, so status transitions read and write a consistent state.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*ReservationInfo, error) {
	info, err := scanReservationInfo(tx.QueryRowContext(ctx, reservationInfoQuery+` WHERE r.id = ? FOR UPDATE OF r`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return info, nil
}

// UpdateStatusTx sets a reservation's status within a transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	return err
}

// UpdateWindowTx rewrites a reservation's time range and recomputed
// total price within a transaction.  Used by requester edits; the
// caller is responsible for re-running the availability check first.
func (r *ReservationRepo) UpdateWindowTx(ctx context.Context, tx *sql.Tx, id uint64, start, end time.Time, totalPrice float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET starts_at = ?, ends_at = ?, total_price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		start, end, totalPrice, id)
	return err
}

// ReservationDetail is the listing projection returned to clients: a
// reservation enriched with the room and requester names so the UI
// can render cards without extra lookups.
type ReservationDetail struct {
	ID            uint64    `json:"id"`
	RoomID        uint64    `json:"room_id"`
	RoomName      string    `json:"room_name"`
	RequesterID   uint64    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	TotalPrice    string    `json:"total_price"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListForUser returns every reservation visible to the user: those
// they requested plus those received by rooms they own.  The OR over
// a single table scan already deduplicates rows where the user is
// both requester and owner.  Newest created first.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.room_id, rm.name, r.requester_id, u.name,
	                  r.starts_at, r.ends_at, r.total_price, r.payment_method, r.status, r.created_at
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN users u ON u.id = r.requester_id
	           WHERE r.requester_id = ? OR rm.owner_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var price float64
		if err := rows.Scan(
			&d.ID, &d.RoomID, &d.RoomName, &d.RequesterID, &d.RequesterName,
			&d.StartsAt, &d.EndsAt, &price, &d.PaymentMethod, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.TotalPrice = model.FormatPrice(price)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
