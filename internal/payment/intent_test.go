package payment_test

import (
	"context"
	"testing"

	bookingdb "staysync/internal/booking/db"
	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/payment"
	"staysync/internal/payment/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingGetter struct {
	mock.Mock
}

func (m *MockBookingGetter) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateOrder(ctx context.Context, bookingID string, amount float64, currency string) (string, error) {
	args := m.Called(bookingID, amount, currency)
	return args.String(0), args.Error(1)
}

func newIssuerWithMocks() (*payment.IntentIssuer, *MockBookingGetter, *MockProvider) {
	mockBookings := new(MockBookingGetter)
	mockProvider := new(MockProvider)

	registry := providers.NewRegistry()
	registry.Register(models.ProviderStripe, mockProvider)

	issuer := payment.NewIntentIssuer(mockBookings, registry, logger.NewLogger())
	return issuer, mockBookings, mockProvider
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		BookingID:  "booking-1",
		GuestID:    "guest-1",
		RoomID:     "room-1",
		TotalPrice: 300,
		Status:     models.BookingPending,
	}
}

func TestCreateIntent_UnknownProvider(t *testing.T) {
	issuer, mockBookings, _ := newIssuerWithMocks()

	resp, err := issuer.CreateIntent(context.Background(), models.IntentRequest{
		BookingID: "booking-1",
		Provider:  "paypal",
		Amount:    300,
	})

	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
	assert.Nil(t, resp)
	mockBookings.AssertNotCalled(t, "GetBookingByID", mock.Anything, mock.Anything)
}

func TestCreateIntent_BookingNotFound(t *testing.T) {
	issuer, mockBookings, _ := newIssuerWithMocks()
	ctx := context.Background()

	mockBookings.On("GetBookingByID", ctx, "missing").Return(nil, bookingdb.ErrBookingNotFound)

	resp, err := issuer.CreateIntent(ctx, models.IntentRequest{
		BookingID: "missing",
		Provider:  models.ProviderStripe,
		Amount:    300,
	})

	assert.ErrorIs(t, err, bookingdb.ErrBookingNotFound)
	assert.Nil(t, resp)
}

func TestCreateIntent_NotPending(t *testing.T) {
	issuer, mockBookings, mockProvider := newIssuerWithMocks()
	ctx := context.Background()

	b := pendingBooking()
	b.Status = models.BookingConfirmed
	mockBookings.On("GetBookingByID", ctx, "booking-1").Return(b, nil)

	resp, err := issuer.CreateIntent(ctx, models.IntentRequest{
		BookingID: "booking-1",
		Provider:  models.ProviderStripe,
		Amount:    300,
	})

	assert.ErrorIs(t, err, payment.ErrBookingNotPending)
	assert.Nil(t, resp)
	mockProvider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntent_AmountMismatchRejectedBeforeProvider(t *testing.T) {
	issuer, mockBookings, mockProvider := newIssuerWithMocks()
	ctx := context.Background()

	mockBookings.On("GetBookingByID", ctx, "booking-1").Return(pendingBooking(), nil)

	// A manipulated client asks to pay 250 for a 300 booking.
	resp, err := issuer.CreateIntent(ctx, models.IntentRequest{
		BookingID: "booking-1",
		Provider:  models.ProviderStripe,
		Amount:    250,
	})

	assert.ErrorIs(t, err, payment.ErrAmountMismatch)
	assert.Nil(t, resp)
	mockProvider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntent_Success(t *testing.T) {
	issuer, mockBookings, mockProvider := newIssuerWithMocks()
	ctx := context.Background()

	mockBookings.On("GetBookingByID", ctx, "booking-1").Return(pendingBooking(), nil)
	mockProvider.On("CreateOrder", "booking-1", 300.0, "INR").Return("pi_test_123", nil)

	resp, err := issuer.CreateIntent(ctx, models.IntentRequest{
		BookingID: "booking-1",
		Provider:  models.ProviderStripe,
		Amount:    300,
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_test_123", resp.Reference)
	assert.Equal(t, models.ProviderStripe, resp.Provider)
	assert.Equal(t, 300.0, resp.Amount)
	assert.Equal(t, "INR", resp.Currency, "currency defaults when the request omits it")

	mockProvider.AssertExpectations(t)
}

func TestCreateIntent_ExplicitCurrency(t *testing.T) {
	issuer, mockBookings, mockProvider := newIssuerWithMocks()
	ctx := context.Background()

	mockBookings.On("GetBookingByID", ctx, "booking-1").Return(pendingBooking(), nil)
	mockProvider.On("CreateOrder", "booking-1", 300.0, "USD").Return("pi_test_456", nil)

	resp, err := issuer.CreateIntent(ctx, models.IntentRequest{
		BookingID: "booking-1",
		Provider:  models.ProviderStripe,
		Amount:    300,
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
}
