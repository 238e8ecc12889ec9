package payment

import (
	"context"
	"errors"
	"fmt"

	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/payment/providers"
)

var (
	// ErrAmountMismatch means the requested intent amount does not equal the
	// booking's immutable total price. Rejected before any provider call so
	// a guest cannot pay a manipulated lower amount.
	ErrAmountMismatch = errors.New("amount does not match booking total")

	ErrBookingNotPending = errors.New("booking is not pending")
)

const defaultCurrency = "INR"

type BookingGetter interface {
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
}

// IntentIssuer asks an external provider to create a payment intent/order
// for a pending booking. It has no side effects on the booking or room.
type IntentIssuer struct {
	Bookings  BookingGetter
	Providers *providers.Registry
	Logger    *logger.Logger
}

func NewIntentIssuer(bookings BookingGetter, registry *providers.Registry, log *logger.Logger) *IntentIssuer {
	return &IntentIssuer{Bookings: bookings, Providers: registry, Logger: log}
}

func (s *IntentIssuer) CreateIntent(ctx context.Context, req models.IntentRequest) (*models.IntentResponse, error) {
	if !models.ValidPaymentProvider(req.Provider) {
		return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, req.Provider)
	}

	booking, err := s.Bookings.GetBookingByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingPending {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Cannot create intent for booking %s with status %s", booking.BookingID, booking.Status))
		return nil, fmt.Errorf("%w: booking %s is %s", ErrBookingNotPending, booking.BookingID, booking.Status)
	}

	if req.Amount != booking.TotalPrice {
		s.Logger.LogSecurity("AMOUNT_MISMATCH",
			fmt.Sprintf("booking %s: requested %.2f, expected %.2f", booking.BookingID, req.Amount, booking.TotalPrice))
		return nil, fmt.Errorf("%w: got %.2f, want %.2f", ErrAmountMismatch, req.Amount, booking.TotalPrice)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	provider, err := s.Providers.For(req.Provider)
	if err != nil {
		return nil, err
	}

	reference, err := provider.CreateOrder(ctx, booking.BookingID, booking.TotalPrice, currency)
	if err != nil {
		return nil, err
	}

	s.Logger.LogPayment("INTENT", reference,
		fmt.Sprintf("booking=%s provider=%s amount=%.2f %s", booking.BookingID, req.Provider, booking.TotalPrice, currency))

	return &models.IntentResponse{
		BookingID: booking.BookingID,
		Provider:  req.Provider,
		Reference: reference,
		Amount:    booking.TotalPrice,
		Currency:  currency,
	}, nil
}
