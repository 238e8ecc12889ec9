package providers

import (
	"context"
	"errors"
	"fmt"

	"staysync/internal/models"
)

var ErrUnknownProvider = errors.New("unknown payment provider")

// Provider creates a payment order/intent at an external gateway and
// returns its reference. Nothing on the booking or room changes here; the
// call is purely preparatory and safe to retry or abandon.
type Provider interface {
	CreateOrder(ctx context.Context, bookingID string, amount float64, currency string) (string, error)
}

// Registry holds the configured provider adapters keyed by provider name.
type Registry struct {
	providers map[models.PaymentProvider]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.PaymentProvider]Provider)}
}

func (r *Registry) Register(name models.PaymentProvider, p Provider) {
	r.providers[name] = p
}

func (r *Registry) For(name models.PaymentProvider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}
