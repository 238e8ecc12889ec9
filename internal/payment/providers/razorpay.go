package providers

import (
	"context"
	"errors"
	"fmt"

	"staysync/internal/logger"

	razorpay "github.com/razorpay/razorpay-go"
)

var ErrRazorpayAPIError = errors.New("razorpay API error")

// RazorpayProvider creates Razorpay orders for bookings.
type RazorpayProvider struct {
	client *razorpay.Client
	log    *logger.Logger
}

func NewRazorpayProvider(keyID, keySecret string, log *logger.Logger) (*RazorpayProvider, error) {
	if keyID == "" || keySecret == "" {
		log.Error("RAZORPAY", "Razorpay credentials not set")
		return nil, errors.New("razorpay credentials not configured")
	}

	log.Info("RAZORPAY", "Razorpay client initialized successfully")
	return &RazorpayProvider{client: razorpay.NewClient(keyID, keySecret), log: log}, nil
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, bookingID string, amount float64, currency string) (string, error) {
	// Razorpay wants the smallest currency unit (paise for INR)
	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": currency,
		"receipt":  fmt.Sprintf("booking_%s", bookingID),
		"notes": map[string]interface{}{
			"booking_id": bookingID,
		},
	}

	body, err := p.client.Order.Create(data, nil)
	if err != nil {
		p.log.Error("RAZORPAY", fmt.Sprintf("Failed to create order for booking %s: %v", bookingID, err))
		return "", fmt.Errorf("%w: %v", ErrRazorpayAPIError, err)
	}

	reference, ok := body["id"].(string)
	if !ok || reference == "" {
		return "", fmt.Errorf("%w: order response missing id", ErrRazorpayAPIError)
	}

	p.log.Info("RAZORPAY", fmt.Sprintf("Order %s created for booking %s (%.2f %s)", reference, bookingID, amount, currency))
	return reference, nil
}
