package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staysync/internal/booking"
	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/payment/storage"
	"staysync/internal/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrBookingAlreadyProcessed means the booking left pending before this
	// event could apply, through another provider's event or an admin
	// override. The event is rejected rather than silently overwriting.
	ErrBookingAlreadyProcessed = errors.New("booking already processed")

	ErrInvalidEvent = errors.New("invalid payment event")
)

const defaultCurrency = "INR"

type DBLayer interface {
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error
}

// TransitionApplier is the booking ledger's transition entry point; routing
// the reconciler through it keeps the state machine enforced in one place.
type TransitionApplier interface {
	ApplyTransition(ctx context.Context, idb bun.IDB, b *models.Booking, target models.BookingStatus) error
}

type EventPublisher interface {
	PublishBookingConfirmed(b models.Booking) error
	PublishBookingCancelled(b models.Booking) error
	PublishPaymentRecorded(p models.Payment) error
}

// Result is what a reconcile call resolved to. Duplicate marks a redelivered
// event whose effects were already applied.
type Result struct {
	Booking   *models.Booking `json:"booking"`
	Payment   *models.Payment `json:"payment"`
	Duplicate bool            `json:"duplicate"`
}

// Reconciler applies external payment outcomes to bookings exactly once per
// logical payment. Delivery from providers is at-least-once and unordered,
// so every step must tolerate duplicates and concurrent retries.
type Reconciler struct {
	DB       DBLayer
	Ledger   TransitionApplier
	Payments storage.Store
	Lock     booking.Locker
	Events   EventPublisher
	Notify   booking.NotifyDispatcher
	Logger   *logger.Logger
	LockWait time.Duration
}

func NewReconciler(db DBLayer, ledger TransitionApplier, payments storage.Store, lock booking.Locker, events EventPublisher, notify booking.NotifyDispatcher, log *logger.Logger) *Reconciler {
	return &Reconciler{
		DB:       db,
		Ledger:   ledger,
		Payments: payments,
		Lock:     lock,
		Events:   events,
		Notify:   notify,
		Logger:   log,
		LockWait: 5 * time.Second,
	}
}

// Reconcile validates a payment event against the booking ledger and
// applies it:
//
//  1. (provider, providerPaymentID) already recorded -> return the recorded
//     result, no side effects.
//  2. Take the per-booking lease so exactly one call transitions the
//     booking; the others resolve as duplicates or rejections.
//  3. Booking no longer pending -> ErrBookingAlreadyProcessed.
//  4. One transaction: insert the payment row, flip the booking status,
//     and on success flip the room to unavailable.
//  5. Post-commit: Kafka event and guest notification, both non-fatal.
//
// A storage failure aborts the whole call with nothing applied; the caller
// retries and step 1 keeps the retry idempotent.
func (r *Reconciler) Reconcile(ctx context.Context, ev models.PaymentEvent) (*Result, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	// Fast path for redelivered events, before any locking.
	if result, err := r.recordedResult(ctx, ev); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	ownerID := uuid.NewString()
	lockCtx, cancel := context.WithTimeout(ctx, r.LockWait)
	defer cancel()

	if err := r.Lock.AcquireWait(lockCtx, ev.BookingID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to lock booking %s: %w", ev.BookingID, err)
	}
	defer func() {
		if err := r.Lock.Release(context.Background(), ev.BookingID, ownerID); err != nil {
			r.Logger.Error("REDIS", fmt.Sprintf("failed to release lock for booking %s: %v", ev.BookingID, err))
		}
	}()

	// A duplicate may have been applied while we waited for the lease.
	if result, err := r.recordedResult(ctx, ev); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	bk, err := r.DB.GetBookingByID(ctx, ev.BookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status != models.BookingPending {
		r.Logger.Warn("RECONCILE", fmt.Sprintf("booking %s is %s, rejecting event %s/%s",
			bk.BookingID, bk.Status, ev.Provider, ev.ProviderPaymentID))
		return nil, fmt.Errorf("%w: booking %s is %s", ErrBookingAlreadyProcessed, bk.BookingID, bk.Status)
	}

	currency := ev.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	pay := &models.Payment{
		PaymentID:         utils.GeneratePaymentID(),
		BookingID:         ev.BookingID,
		Provider:          ev.Provider,
		ProviderPaymentID: ev.ProviderPaymentID,
		Amount:            ev.Amount,
		Currency:          currency,
		Outcome:           ev.Outcome,
		CreatedAt:         time.Now(),
	}

	target := models.BookingCancelled
	if ev.Outcome == models.OutcomeSuccess {
		target = models.BookingConfirmed
	}

	err = r.DB.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		if err := r.Payments.SavePayment(ctx, idb, pay); err != nil {
			return err
		}
		return r.Ledger.ApplyTransition(ctx, idb, bk, target)
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile of booking %s failed: %w", ev.BookingID, err)
	}

	r.Logger.LogPayment("RECONCILE", ev.ProviderPaymentID,
		fmt.Sprintf("booking=%s outcome=%s status=%s", bk.BookingID, ev.Outcome, bk.Status))

	r.afterCommit(bk, pay)

	return &Result{Booking: bk, Payment: pay}, nil
}

// recordedResult returns the previously applied result for a redelivered
// event, or nil if the event is new.
func (r *Reconciler) recordedResult(ctx context.Context, ev models.PaymentEvent) (*Result, error) {
	pay, err := r.Payments.GetPaymentByProviderRef(ctx, ev.Provider, ev.ProviderPaymentID)
	if errors.Is(err, storage.ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bk, err := r.DB.GetBookingByID(ctx, pay.BookingID)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("RECONCILE", fmt.Sprintf("duplicate event %s/%s for booking %s, returning recorded result",
		ev.Provider, ev.ProviderPaymentID, pay.BookingID))

	return &Result{Booking: bk, Payment: pay, Duplicate: true}, nil
}

// afterCommit fires the Kafka event and the guest notification. Failures
// here are logged only; the reconciliation has already committed.
func (r *Reconciler) afterCommit(bk *models.Booking, pay *models.Payment) {
	if err := r.Events.PublishPaymentRecorded(*pay); err != nil {
		r.Logger.Error("KAFKA", fmt.Sprintf("publish payment recorded: %v", err))
	}

	switch bk.Status {
	case models.BookingConfirmed:
		if err := r.Events.PublishBookingConfirmed(*bk); err != nil {
			r.Logger.Error("KAFKA", fmt.Sprintf("publish booking confirmed: %v", err))
		}
		r.Notify.BookingConfirmed(bk)
	case models.BookingCancelled:
		if err := r.Events.PublishBookingCancelled(*bk); err != nil {
			r.Logger.Error("KAFKA", fmt.Sprintf("publish booking cancelled: %v", err))
		}
		r.Notify.BookingCancelled(bk)
	}
}

func validateEvent(ev models.PaymentEvent) error {
	if ev.BookingID == "" {
		return fmt.Errorf("%w: booking_id is required", ErrInvalidEvent)
	}
	if !models.ValidPaymentProvider(ev.Provider) {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidEvent, ev.Provider)
	}
	if ev.ProviderPaymentID == "" {
		return fmt.Errorf("%w: provider_payment_id is required", ErrInvalidEvent)
	}
	if ev.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEvent)
	}
	if ev.Outcome != models.OutcomeSuccess && ev.Outcome != models.OutcomeFailed {
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidEvent, ev.Outcome)
	}
	return nil
}
