package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staysync/internal/logger"
	"staysync/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrRoomUnavailable   = errors.New("room not available")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrValidation        = errors.New("invalid booking request")

	// ErrConflict means the CAS on the booking status found a different
	// status than the one loaded under the lock. It should not happen while
	// the per-booking lease is held; callers may retry safely.
	ErrConflict = errors.New("booking modified concurrently")
)

const dateLayout = "2006-01-02"

type DBLayer interface {
	CreateBooking(ctx context.Context, booking models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByGuest(ctx context.Context, guestID string) ([]models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error
	UpdateBookingStatus(ctx context.Context, idb bun.IDB, bookingID string, from, to models.BookingStatus) (int64, error)
}

type RoomStore interface {
	GetRoomByID(ctx context.Context, id string) (*models.Room, error)
	SetAvailability(ctx context.Context, idb bun.IDB, roomID string, available bool) error
}

type Locker interface {
	AcquireWait(ctx context.Context, bookingID, ownerID string) error
	Release(ctx context.Context, bookingID, ownerID string) error
}

type EventPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingConfirmed(booking models.Booking) error
	PublishBookingCancelled(booking models.Booking) error
}

type NotifyDispatcher interface {
	BookingCreated(booking *models.Booking)
	BookingConfirmed(booking *models.Booking)
	BookingCancelled(booking *models.Booking)
}

// BookingService is the booking ledger: it owns booking rows and enforces
// the status state machine for every writer, payment reconciler and admin
// override alike.
type BookingService struct {
	DB       DBLayer
	Rooms    RoomStore
	Lock     Locker
	Events   EventPublisher
	Notify   NotifyDispatcher
	Logger   *logger.Logger
	LockWait time.Duration
}

func NewBookingService(db DBLayer, rooms RoomStore, lock Locker, events EventPublisher, notify NotifyDispatcher, log *logger.Logger) *BookingService {
	return &BookingService{
		DB:       db,
		Rooms:    rooms,
		Lock:     lock,
		Events:   events,
		Notify:   notify,
		Logger:   log,
		LockWait: 5 * time.Second,
	}
}

// Create validates the request, prices the stay and inserts a pending
// booking. The room is NOT reserved here: availability is only committed
// when a successful payment is reconciled, so two guests may hold pending
// bookings for the same room until one of them pays.
func (s *BookingService) Create(ctx context.Context, guestID, guestEmail string, req models.BookingRequest) (*models.Booking, error) {
	if req.RoomID == "" {
		return nil, fmt.Errorf("%w: room_id is required", ErrValidation)
	}

	checkIn, err := time.ParseInLocation(dateLayout, req.CheckInDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid check-in date %q", ErrValidation, req.CheckInDate)
	}
	checkOut, err := time.ParseInLocation(dateLayout, req.CheckOutDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid check-out date %q", ErrValidation, req.CheckOutDate)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return nil, fmt.Errorf("%w: check-in date is in the past", ErrValidation)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check-out must be after check-in", ErrValidation)
	}

	room, err := s.Rooms.GetRoomByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room %s: %w", req.RoomID, err)
	}
	if !room.Available {
		return nil, ErrRoomUnavailable
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	totalPrice := float64(nights) * room.PricePerNight

	booking := models.Booking{
		BookingID:    uuid.NewString(),
		GuestID:      guestID,
		GuestEmail:   guestEmail,
		RoomID:       room.RoomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		TotalPrice:   totalPrice,
		Status:       models.BookingPending,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.Logger.LogBooking("CREATE", booking.BookingID,
		fmt.Sprintf("room=%s nights=%d total=%.2f", room.RoomID, nights, totalPrice))

	if err := s.Events.PublishBookingCreated(booking); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish booking created: %v", err))
	}
	s.Notify.BookingCreated(&booking)

	return &booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListByGuest(ctx context.Context, guestID string) ([]models.Booking, error) {
	return s.DB.ListBookingsByGuest(ctx, guestID)
}

func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.DB.ListBookings(ctx)
}

// Transition is the admin override entry point. It takes the same
// per-booking lease as the payment reconciler, so a racing reconcile and
// override resolve to exactly one applied transition.
func (s *BookingService) Transition(ctx context.Context, bookingID string, target models.BookingStatus, actorID string) (*models.Booking, error) {
	if !models.ValidBookingStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	ownerID := uuid.NewString()
	lockCtx, cancel := context.WithTimeout(ctx, s.LockWait)
	defer cancel()

	if err := s.Lock.AcquireWait(lockCtx, bookingID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to lock booking %s: %w", bookingID, err)
	}
	defer func() {
		if err := s.Lock.Release(context.Background(), bookingID, ownerID); err != nil {
			s.Logger.Error("REDIS", fmt.Sprintf("failed to release lock for booking %s: %v", bookingID, err))
		}
	}()

	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	err = s.DB.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		return s.ApplyTransition(ctx, idb, booking, target)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogBooking("OVERRIDE", bookingID,
		fmt.Sprintf("%s -> %s by %s", prev, target, actorID))

	switch target {
	case models.BookingConfirmed:
		if err := s.Events.PublishBookingConfirmed(*booking); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish booking confirmed: %v", err))
		}
		s.Notify.BookingConfirmed(booking)
	case models.BookingCancelled:
		if err := s.Events.PublishBookingCancelled(*booking); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish booking cancelled: %v", err))
		}
		s.Notify.BookingCancelled(booking)
	}

	return booking, nil
}

// ApplyTransition applies one state machine edge inside the caller's
// transaction, together with its room availability side effect. The caller
// must hold the per-booking lease. On success booking.Status is updated in
// place.
//
// Room side effects per edge:
//
//	* -> confirmed            room becomes unavailable
//	confirmed -> cancelled    room returns to the pool
//	cancelled -> pending      room returns to the pool (reopen)
//
// completed leaves the flag untouched.
func (s *BookingService) ApplyTransition(ctx context.Context, idb bun.IDB, booking *models.Booking, target models.BookingStatus) error {
	from := booking.Status
	if !models.CanTransition(from, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
	}

	rows, err := s.DB.UpdateBookingStatus(ctx, idb, booking.BookingID, from, target)
	if err != nil {
		return fmt.Errorf("failed to update booking %s status: %w", booking.BookingID, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: booking %s is no longer %s", ErrConflict, booking.BookingID, from)
	}

	switch {
	case target == models.BookingConfirmed:
		err = s.Rooms.SetAvailability(ctx, idb, booking.RoomID, false)
	case from == models.BookingConfirmed && target == models.BookingCancelled:
		err = s.Rooms.SetAvailability(ctx, idb, booking.RoomID, true)
	case from == models.BookingCancelled && target == models.BookingPending:
		err = s.Rooms.SetAvailability(ctx, idb, booking.RoomID, true)
	}
	if err != nil {
		return err
	}

	booking.Status = target
	booking.UpdatedAt = time.Now()
	return nil
}
