package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"staysync/internal/logger"
	"staysync/internal/models"

	"github.com/uptrace/bun"
)

var ErrPaymentNotFound = errors.New("payment not found")

type BunStore struct {
	Bun *bun.DB
	log *logger.Logger
}

func NewBunStore(bunDB *bun.DB, log *logger.Logger) *BunStore {
	return &BunStore{Bun: bunDB, log: log}
}

func (s *BunStore) SavePayment(ctx context.Context, idb bun.IDB, payment *models.Payment) error {
	s.log.LogDatabase("INSERT", "payments", fmt.Sprintf("Saving payment %s for booking %s", payment.PaymentID, payment.BookingID))

	if _, err := idb.NewInsert().Model(payment).Exec(ctx); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save payment %s: %s", payment.PaymentID, err.Error()))
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *BunStore) GetPaymentByProviderRef(ctx context.Context, provider models.PaymentProvider, providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.Bun.NewSelect().
		Model(&payment).
		Where("provider = ?", provider).
		Where("provider_payment_id = ?", providerPaymentID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (s *BunStore) GetSuccessfulPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.Bun.NewSelect().
		Model(&payment).
		Where("booking_id = ?", bookingID).
		Where("outcome = ?", models.OutcomeSuccess).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (s *BunStore) ListPaymentsByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.Bun.NewSelect().
		Model(&payments).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
