// This file defines the repository for rooms. A Room is the unit being
// rented out: it belongs to a single owner and carries pricing and
// address metadata. Only the owner may update or delete a room; reads
// are open to any authenticated caller.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
)

// RoomRepo encapsulates all database queries related to rooms.  It
// depends on a sql.DB connection which should be configured elsewhere.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// DB exposes the underlying handle so handlers can open transactions
// that span repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, owner_id, name, description, capacity, street, number, district, city, state, postal_code, price_per_hour, is_available, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	var rm model.Room
	if err := row.Scan(
		&rm.ID, &rm.OwnerID, &rm.Name, &rm.Description, &rm.Capacity,
		&rm.Street, &rm.Number, &rm.District, &rm.City, &rm.State, &rm.PostalCode,
		&rm.PricePerHour, &rm.IsAvailable, &rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Create inserts a new room into the database.  On success the room's
// ID field is populated with the auto-generated value and a follow-up
// SELECT fills the timestamp defaults so callers receive a fully
// populated record.  The owner is taken from the struct and is never
// client-suppliable at the handler layer.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const qInsert = `INSERT INTO rooms
		(owner_id, name, description, capacity, street, number, district, city, state, postal_code, price_per_hour, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		rm.OwnerID, rm.Name, rm.Description, rm.Capacity,
		rm.Street, rm.Number, rm.District, rm.City, rm.State, rm.PostalCode,
		rm.PricePerHour, rm.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, rm.ID).Scan(&rm.CreatedAt, &rm.UpdatedAt)
}

// GetByID fetches a room by its ID regardless of owner.  It returns
// ErrRoomNotFound if no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// RoomFilter narrows the result of List.  Zero values mean "no
// filter".  OwnerID covers both the explicit owner filter and the
// "mine only" flag (the handler resolves mine=true to the caller's id).
type RoomFilter struct {
	OwnerID   uint64
	City      string
	State     string
	Available *bool
}

// List returns rooms matching the filter ordered by id.  All filters
// are optional and combine with AND.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	var conds []string
	var args []interface{}
	if f.OwnerID != 0 {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.City != "" {
		conds = append(conds, "city = ?")
		args = append(args, f.City)
	}
	if f.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, strings.ToUpper(f.State))
	}
	if f.Available != nil {
		conds = append(conds, "is_available = ?")
		args = append(args, *f.Available)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RoomUpdate carries the mutable room fields for a partial update.
// Nil pointers leave the column untouched.
type RoomUpdate struct {
	Name         *string
	Description  *string
	Capacity     *uint32
	Street       *string
	Number       *string
	District     *string
	City         *string
	State        *string
	PostalCode   *string
	PricePerHour *float64
	IsAvailable  *bool
}

// Update applies a partial update to a room owned by ownerID.  It
// returns ErrRoomNotFound when the room does not exist and
// ErrForbidden when it belongs to a different user.  When no field is
// set the call is a no-op returning the current row.
func (r *RoomRepo) Update(ctx context.Context, id, ownerID uint64, upd RoomUpdate) (*model.Room, error) {
	var dbOwnerID uint64
	if err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM rooms WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if dbOwnerID != ownerID {
		return nil, ErrForbidden
	}

	var sets []string
	var args []interface{}
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Capacity != nil {
		add("capacity", *upd.Capacity)
	}
	if upd.Street != nil {
		add("street", *upd.Street)
	}
	if upd.Number != nil {
		add("number", *upd.Number)
	}
	if upd.District != nil {
		add("district", *upd.District)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.State != nil {
		add("state", strings.ToUpper(*upd.State))
	}
	if upd.PostalCode != nil {
		add("postal_code", *upd.PostalCode)
	}
	if upd.PricePerHour != nil {
		add("price_per_hour", *upd.PricePerHour)
	}
	if upd.IsAvailable != nil {
		add("is_available", *upd.IsAvailable)
	}
	if len(sets) > 0 {
		q := `UPDATE rooms SET ` + strings.Join(sets, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteByIDAndOwner removes a room and, via foreign keys, its
// reservations, provided it belongs to the specified owner.  It
// returns ErrRoomNotFound when the room does not exist and
// ErrForbidden when it is owned by a different user.
func (r *RoomRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	var dbOwnerID uint64
	if err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM rooms WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	// reservations cascade through fk_reservations_room
	_, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	return err
}
