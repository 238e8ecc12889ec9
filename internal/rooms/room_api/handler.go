package room_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/rooms"
	roomdb "staysync/internal/rooms/db"
	"staysync/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Rooms  *rooms.RoomService
	Logger *logger.Logger
}

func NewHandler(svc *rooms.RoomService, log *logger.Logger) *Handler {
	return &Handler{Rooms: svc, Logger: log}
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rooms.ListRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Rooms retrieved", list))
}

// GetRoom handles GET /api/rooms/{roomId}.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	room, err := h.Rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Room retrieved", room))
}

// CreateRoom handles POST /api/rooms (admin).
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	room, err := h.Rooms.CreateRoom(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateRoom: %v", err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Room created", room))
}

// UpdateRoom handles PUT /api/rooms/{roomId} (admin).
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req models.RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	room, err := h.Rooms.UpdateRoom(r.Context(), roomID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Room updated", room))
}

// DeleteRoom handles DELETE /api/rooms/{roomId} (admin).
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	if err := h.Rooms.DeleteRoom(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Room deleted", nil))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roomdb.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Room not found", err.Error()))
	case errors.Is(err, rooms.ErrValidation):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}
