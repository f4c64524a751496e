package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomRepo(t *testing.T) (*RoomRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoomRepo(db), mock
}

func roomRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description", "capacity",
		"street", "number", "district", "city", "state", "postal_code",
		"price_per_hour", "is_available", "created_at", "updated_at",
	})
	now := time.Now().UTC()
	for _, id := range ids {
		rows.AddRow(id, 1, "Sala Ipanema", "", 10,
			"Rua A", "100", "Centro", "Sao Paulo", "SP", "01000-000",
			75.5, true, now, now)
	}
	return rows
}

func TestRoomGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
			WithArgs(uint64(5)).
			WillReturnRows(roomRows(5))

		rm, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), rm.ID)
		assert.Equal(t, "Sala Ipanema", rm.Name)
		assert.Equal(t, 75.5, rm.PricePerHour)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
			WithArgs(uint64(404)).
			WillReturnRows(roomRows())

		_, err := repo.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRoomListFilters(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM rooms ORDER BY id").
			WillReturnRows(roomRows(1, 2))

		rooms, err := repo.List(context.Background(), RoomFilter{})
		require.NoError(t, err)
		assert.Len(t, rooms, 2)
	})

	t.Run("city, state and availability combine", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		avail := true
		mock.ExpectQuery("WHERE city = \\? AND state = \\? AND is_available = \\?").
			WithArgs("Sao Paulo", "SP", true).
			WillReturnRows(roomRows(1))

		rooms, err := repo.List(context.Background(), RoomFilter{City: "Sao Paulo", State: "sp", Available: &avail})
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner filter", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("WHERE owner_id = \\?").
			WithArgs(uint64(9)).
			WillReturnRows(roomRows(1))

		rooms, err := repo.List(context.Background(), RoomFilter{OwnerID: 9})
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
	})
}

func TestRoomUpdateAuthorization(t *testing.T) {
	t.Run("missing room", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT owner_id FROM rooms").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}))

		_, err := repo.Update(context.Background(), 5, 1, RoomUpdate{})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("wrong owner", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT owner_id FROM rooms").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(2))

		_, err := repo.Update(context.Background(), 5, 1, RoomUpdate{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("partial update touches only set columns", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		name := "Sala Leblon"
		price := 120.0

		mock.ExpectQuery("SELECT owner_id FROM rooms").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
		mock.ExpectExec("UPDATE rooms SET name = \\?, price_per_hour = \\?").
			WithArgs("Sala Leblon", 120.0, uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
			WithArgs(uint64(5)).
			WillReturnRows(roomRows(5))

		_, err := repo.Update(context.Background(), 5, 1, RoomUpdate{Name: &name, PricePerHour: &price})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRoomDeleteByIDAndOwner(t *testing.T) {
	t.Run("wrong owner", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT owner_id FROM rooms").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(7))

		err := repo.DeleteByIDAndOwner(context.Background(), 5, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo, mock := newRoomRepo(t)
		mock.ExpectQuery("SELECT owner_id FROM rooms").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
		mock.ExpectExec("DELETE FROM rooms WHERE id").
			WithArgs(uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteByIDAndOwner(context.Background(), 5, 1)
		assert.NoError(t, err)
	})
}
