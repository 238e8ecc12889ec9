package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staysync/internal/models"
	roomdb "staysync/internal/rooms/db"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("invalid room data")

// RoomService owns the room inventory. The booking ledger reads rooms
// through it; availability flips happen at the storage layer inside the
// reconciler's transaction.
type RoomService struct {
	DB *roomdb.DB
}

func NewRoomService(db *roomdb.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.DB.GetRoomByID(ctx, id)
}

func (s *RoomService) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.DB.ListRooms(ctx)
}

func (s *RoomService) CreateRoom(ctx context.Context, req models.RoomRequest) (*models.Room, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	room := models.Room{
		RoomID:        uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		Available:     available,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, id string, req models.RoomRequest) (*models.Room, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	room, err := s.DB.GetRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}

	room.Title = req.Title
	room.Description = req.Description
	room.PricePerNight = req.PricePerNight
	room.Capacity = req.Capacity
	if req.Available != nil {
		room.Available = *req.Available
	}
	room.UpdatedAt = time.Now()

	if err := s.DB.UpdateRoom(ctx, *room); err != nil {
		return nil, fmt.Errorf("failed to update room %s: %w", id, err)
	}
	return room, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	return s.DB.DeleteRoom(ctx, id)
}

func validate(req models.RoomRequest) error {
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.PricePerNight <= 0 {
		return fmt.Errorf("%w: price per night must be positive", ErrValidation)
	}
	if req.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	return nil
}
