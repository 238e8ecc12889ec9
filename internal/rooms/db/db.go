package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staysync/internal/models"

	"github.com/uptrace/bun"
)

var ErrRoomNotFound = errors.New("room not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetRoomByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := d.Bun.NewSelect().
		Model(&room).
		Where("room_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *DB) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := d.Bun.NewSelect().
		Model(&rooms).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (d *DB) CreateRoom(ctx context.Context, room models.Room) error {
	_, err := d.Bun.NewInsert().Model(&room).Exec(ctx)
	return err
}

func (d *DB) UpdateRoom(ctx context.Context, room models.Room) error {
	res, err := d.Bun.NewUpdate().
		Model(&room).
		Column("title", "description", "price_per_night", "capacity", "available", "updated_at").
		Where("room_id = ?", room.RoomID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (d *DB) DeleteRoom(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Room)(nil)).
		Where("room_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetAvailability flips the room's bookable flag. It takes a bun.IDB so the
// reconciler can run it inside the same transaction as the booking status
// flip; the two writes must never be independently visible.
func (d *DB) SetAvailability(ctx context.Context, idb bun.IDB, roomID string, available bool) error {
	res, err := idb.NewUpdate().
		Model((*models.Room)(nil)).
		Set("available = ?", available).
		Set("updated_at = ?", time.Now()).
		Where("room_id = ?", roomID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set availability for room %s: %w", roomID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}
