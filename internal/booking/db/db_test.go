package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	bookingdb "staysync/internal/booking/db"
	"staysync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bookingdb.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Booking)(nil)))

	t.Cleanup(func() { bunDB.Close() })
	return &bookingdb.DB{Bun: bunDB}
}

func sampleBooking(id string, status models.BookingStatus) models.Booking {
	return models.Booking{
		BookingID:    id,
		GuestID:      "guest-1",
		GuestEmail:   "guest@example.com",
		RoomID:       "room-1",
		CheckInDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TotalPrice:   300,
		Status:       status,
		CreatedAt:    time.Now().Round(time.Second),
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := sampleBooking("booking-1", models.BookingPending)
	require.NoError(t, db.CreateBooking(ctx, b))

	got, err := db.GetBookingByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, got.BookingID)
	assert.Equal(t, b.GuestID, got.GuestID)
	assert.Equal(t, b.RoomID, got.RoomID)
	assert.Equal(t, b.TotalPrice, got.TotalPrice)
	assert.Equal(t, models.BookingPending, got.Status)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetBookingByID(context.Background(), "nope")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, bookingdb.ErrBookingNotFound))
}

func TestUpdateBookingStatus_CompareAndSwap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, sampleBooking("booking-1", models.BookingPending)))

	// CAS with the matching current status applies.
	rows, err := db.UpdateBookingStatus(ctx, db.Bun, "booking-1", models.BookingPending, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := db.GetBookingByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	// A stale writer that still thinks the booking is pending loses.
	rows, err = db.UpdateBookingStatus(ctx, db.Bun, "booking-1", models.BookingPending, models.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	got, err = db.GetBookingByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status, "stale CAS must not change the row")
}

func TestUpdateBookingStatus_InsideTx(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, sampleBooking("booking-1", models.BookingPending)))

	err := db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		rows, err := db.UpdateBookingStatus(ctx, idb, "booking-1", models.BookingPending, models.BookingConfirmed)
		if err != nil {
			return err
		}
		if rows != 1 {
			return errors.New("expected one row")
		}
		return nil
	})
	require.NoError(t, err)

	got, err := db.GetBookingByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, sampleBooking("booking-1", models.BookingPending)))

	boom := errors.New("boom")
	err := db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		if _, err := db.UpdateBookingStatus(ctx, idb, "booking-1", models.BookingPending, models.BookingConfirmed); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.GetBookingByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status, "status flip must roll back with the tx")
}

func TestListBookingsByGuest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := sampleBooking("booking-1", models.BookingPending)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := sampleBooking("booking-2", models.BookingConfirmed)
	second.CreatedAt = time.Now().Add(-1 * time.Hour)
	other := sampleBooking("booking-3", models.BookingPending)
	other.GuestID = "guest-2"

	require.NoError(t, db.CreateBooking(ctx, first))
	require.NoError(t, db.CreateBooking(ctx, second))
	require.NoError(t, db.CreateBooking(ctx, other))

	got, err := db.ListBookingsByGuest(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "booking-2", got[0].BookingID)
	assert.Equal(t, "booking-1", got[1].BookingID)

	all, err := db.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
