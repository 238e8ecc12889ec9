package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentProvider string

const (
	ProviderStripe   PaymentProvider = "stripe"
	ProviderRazorpay PaymentProvider = "razorpay"
)

func ValidPaymentProvider(p PaymentProvider) bool {
	return p == ProviderStripe || p == ProviderRazorpay
}

type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailed  PaymentOutcome = "failed"
)

// Payment is an append-only record of a provider payment outcome applied to
// a booking. Rows are inserted by the reconciler and never updated.
// (provider, provider_payment_id) is the idempotency key.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	PaymentID         string          `bun:"payment_id,pk" json:"payment_id"`
	BookingID         string          `bun:"booking_id,notnull" json:"booking_id"`
	Provider          PaymentProvider `bun:"provider,notnull,unique:idx_provider_payment" json:"provider"`
	ProviderPaymentID string          `bun:"provider_payment_id,notnull,unique:idx_provider_payment" json:"provider_payment_id"`
	Amount            float64         `bun:"amount,notnull" json:"amount"`
	Currency          string          `bun:"currency,notnull" json:"currency"`
	Outcome           PaymentOutcome  `bun:"outcome,notnull" json:"outcome"`
	CreatedAt         time.Time       `bun:"created_at,notnull" json:"created_at"`
}

// PaymentEvent is the contract delivered by a provider webhook or a client
// relaying the provider outcome. Delivery is at least once and may be
// duplicated.
type PaymentEvent struct {
	BookingID         string          `json:"booking_id"`
	Provider          PaymentProvider `json:"provider"`
	ProviderPaymentID string          `json:"provider_payment_id"`
	Amount            float64         `json:"amount"`
	Currency          string          `json:"currency,omitempty"`
	Outcome           PaymentOutcome  `json:"outcome"`
}

type IntentRequest struct {
	BookingID string          `json:"booking_id"`
	Provider  PaymentProvider `json:"provider"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
}

// IntentResponse carries the provider reference the guest needs to complete
// payment at the provider.
type IntentResponse struct {
	BookingID string          `json:"booking_id"`
	Provider  PaymentProvider `json:"provider"`
	Reference string          `json:"reference"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
}
