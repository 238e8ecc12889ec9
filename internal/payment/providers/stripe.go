package providers

import (
	"context"
	"errors"
	"fmt"

	"staysync/internal/logger"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// StripeProvider creates Stripe payment intents for bookings.
type StripeProvider struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeProvider(secretKey string, log *logger.Logger) (*StripeProvider, error) {
	if secretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeProvider{client: sc, log: log}, nil
}

func (p *StripeProvider) CreateOrder(ctx context.Context, bookingID string, amount float64, currency string) (string, error) {
	// Stripe wants the smallest currency unit
	amountInCents := int64(amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID)

	pi, err := p.client.PaymentIntents.New(params)
	if err != nil {
		p.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent for booking %s: %v", bookingID, err))
		return "", fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	p.log.Info("STRIPE", fmt.Sprintf("Payment intent %s created for booking %s (%.2f %s)", pi.ID, bookingID, amount, currency))
	return pi.ID, nil
}
