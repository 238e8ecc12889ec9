package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"staysync/internal/auth"
	"staysync/internal/booking"
	bookingdb "staysync/internal/booking/db"
	"staysync/internal/logger"
	"staysync/internal/models"
	roomdb "staysync/internal/rooms/db"
	"staysync/internal/sse"
	"staysync/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	BookingService *booking.BookingService
	Emitter        *sse.BookingEventEmitter
	Logger         *logger.Logger
}

func NewHandler(service *booking.BookingService, emitter *sse.BookingEventEmitter, log *logger.Logger) *Handler {
	return &Handler{BookingService: service, Emitter: emitter, Logger: log}
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: failed to decode request body: %v", err))
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	guestID := auth.UserID(r.Context())
	guestEmail := auth.Email(r.Context())

	bk, err := h.BookingService.Create(r.Context(), guestID, guestEmail, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: %v", err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Booking created", bk))
}

// GetBooking handles GET /api/bookings/{bookingId}. Guests may only read
// their own bookings.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	bk, err := h.BookingService.Get(r.Context(), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}

	if auth.Role(r.Context()) != auth.RoleAdmin && bk.GuestID != auth.UserID(r.Context()) {
		h.Logger.LogSecurity("OWNERSHIP", fmt.Sprintf("user %s tried to read booking %s", auth.UserID(r.Context()), bookingID))
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "booking belongs to another guest"))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking found", bk))
}

// ListMyBookings handles GET /api/bookings/my.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.BookingService.ListByGuest(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved", bookings))
}

// ListAllBookings handles GET /api/bookings (admin), newest first.
func (h *Handler) ListAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.BookingService.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved", bookings))
}

// OverrideStatus handles PUT /api/bookings/{bookingId}/status (admin). The
// override goes through the same state machine and per-booking lock as the
// payment reconciler.
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var req models.OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	bk, err := h.BookingService.Transition(r.Context(), bookingID, req.Status, auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("OverrideStatus: booking %s -> %s: %v", bookingID, req.Status, err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking status updated", bk))
}

// StreamBookingEvents handles GET /api/bookings/events/stream (admin): an SSE feed
// of booking lifecycle changes for the admin console.
func (h *Handler) StreamBookingEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.Emitter.Subscribe(r.Context())
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
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
	case errors.Is(err, roomdb.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Room not found", err.Error()))
	case errors.Is(err, booking.ErrValidation):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid booking request", err.Error()))
	case errors.Is(err, booking.ErrRoomUnavailable):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Room not available", err.Error()))
	case errors.Is(err, booking.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Invalid status transition", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}
