package storage

import (
	"context"

	"staysync/internal/models"

	"github.com/uptrace/bun"
)

// Store is the append-only payment ledger. Rows are inserted once and never
// updated; (provider, provider_payment_id) is unique.
type Store interface {
	// SavePayment inserts a payment row. It takes a bun.IDB so the
	// reconciler can write it inside the same transaction as the booking
	// status flip.
	SavePayment(ctx context.Context, idb bun.IDB, payment *models.Payment) error
	GetPaymentByProviderRef(ctx context.Context, provider models.PaymentProvider, providerPaymentID string) (*models.Payment, error)
	GetSuccessfulPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error)
	ListPaymentsByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
}
