package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staysync/internal/models"

	"github.com/uptrace/bun"
)

var ErrBookingNotFound = errors.New("booking not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateBooking(ctx context.Context, booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(ctx)
	return err
}

func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) ListBookingsByGuest(ctx context.Context, guestID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// RunInTx runs fn inside a database transaction. The booking status flip,
// the payment insert and the room availability write all share one tx so no
// reader can observe them half-applied.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// UpdateBookingStatus moves a booking from one status to another with a
// compare-and-swap on the current status. It returns the number of rows
// updated: zero means some other writer got there first.
func (d *DB) UpdateBookingStatus(ctx context.Context, idb bun.IDB, bookingID string, from, to models.BookingStatus) (int64, error) {
	res, err := idb.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now()).
		Where("booking_id = ?", bookingID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rows, nil
}
