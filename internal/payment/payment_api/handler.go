package payment_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	bookingdb "staysync/internal/booking/db"
	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/payment"
	"staysync/internal/payment/providers"
	"staysync/internal/payment/reconciler"
	"staysync/internal/payment/storage"
	"staysync/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Intents    *payment.IntentIssuer
	Reconciler *reconciler.Reconciler
	Payments   storage.Store
	Logger     *logger.Logger
}

func NewHandler(intents *payment.IntentIssuer, rec *reconciler.Reconciler, payments storage.Store, log *logger.Logger) *Handler {
	return &Handler{Intents: intents, Reconciler: rec, Payments: payments, Logger: log}
}

// CreateIntent handles POST /api/payments/intent. It verifies the booking
// is pending and the amount matches before any provider call.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req models.IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	resp, err := h.Intents.CreateIntent(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateIntent: booking %s: %v", req.BookingID, err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Payment intent created", resp))
}

// ReconcileEvent handles POST /api/payments/events: the payment-outcome
// callback. Delivery is at-least-once; duplicates resolve to the recorded
// result with HTTP 200.
func (h *Handler) ReconcileEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid event payload", err.Error()))
		return
	}

	result, err := h.Reconciler.Reconcile(r.Context(), ev)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReconcileEvent: booking %s: %v", ev.BookingID, err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Payment processed", result))
}

// ListBookingPayments handles GET /api/payments/booking/{bookingId} (admin).
func (h *Handler) ListBookingPayments(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	payments, err := h.Payments.ListPaymentsByBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Payments retrieved", payments))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookingdb.ErrBookingNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Booking not found", err.Error()))
	case errors.Is(err, payment.ErrAmountMismatch):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Amount mismatch", err.Error()))
	case errors.Is(err, payment.ErrBookingNotPending):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Booking not pending", err.Error()))
	case errors.Is(err, reconciler.ErrBookingAlreadyProcessed):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Booking already processed", err.Error()))
	case errors.Is(err, reconciler.ErrInvalidEvent):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid payment event", err.Error()))
	case errors.Is(err, providers.ErrUnknownProvider):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Unknown payment provider", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}
