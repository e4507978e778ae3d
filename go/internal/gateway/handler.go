package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/mcdev12/wheelspin/go/internal/wheel/events"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxRequestBody      = 1 << 16
)

// APIHandler serves the wheel REST routes.
type APIHandler struct {
	service *Service
}

// NewAPIHandler creates a REST handler over a service.
func NewAPIHandler(service *Service) *APIHandler {
	return &APIHandler{service: service}
}

// RegisterRoutes registers the wheel REST routes with an HTTP mux
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/wheels", h.HandleCreateWheel)
	mux.HandleFunc("GET /api/wheels/{id}", h.HandleGetWheel)
	mux.HandleFunc("DELETE /api/wheels/{id}", h.HandleDeleteWheel)
	mux.HandleFunc("GET /api/wheels/{id}/layout", h.HandleGetLayout)
	mux.HandleFunc("POST /api/wheels/{id}/entries", h.HandleAddEntry)
	mux.HandleFunc("DELETE /api/wheels/{id}/entries", h.HandleClearEntries)
	mux.HandleFunc("DELETE /api/wheels/{id}/entries/{entryID}", h.HandleRemoveEntry)
	mux.HandleFunc("PUT /api/wheels/{id}/entries/{entryID}/hidden", h.HandleSetHidden)
	mux.HandleFunc("POST /api/wheels/{id}/entries/{entryID}/toggle", h.HandleToggleHidden)
	mux.HandleFunc("POST /api/wheels/{id}/spin", h.HandleSpin)
	mux.HandleFunc("POST /api/wheels/{id}/spin/cancel", h.HandleCancelSpin)
	mux.HandleFunc("GET /api/wheels/{id}/history", h.HandleHistory)
}

type createWheelRequest struct {
	Seed bool `json:"seed"`
}

type createWheelResponse struct {
	WheelID string      `json:"wheel_id"`
	State   wheel.State `json:"state"`
}

type addEntryRequest struct {
	Name     string `json:"name"`
	ImageRef string `json:"image_ref"`
}

type setHiddenRequest struct {
	Hidden *bool `json:"hidden"`
}

type layoutResponse struct {
	WheelID     string             `json:"wheel_id"`
	ActiveCount int                `json:"active_count"`
	Slices      []events.SliceView `json:"slices"`
	Placeholder string             `json:"placeholder,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleCreateWheel handles POST /api/wheels
func (h *APIHandler) HandleCreateWheel(w http.ResponseWriter, r *http.Request) {
	var req createWheelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.service.CreateWheel(r.Context(), req.Seed)
	if err != nil {
		log.Error().Err(err).Msg("failed to create wheel")
		writeError(w, http.StatusInternalServerError, "failed to create wheel")
		return
	}

	writeJSON(w, http.StatusCreated, createWheelResponse{
		WheelID: room.ID().String(),
		State:   room.Controller().Snapshot(),
	})
}

// HandleGetWheel handles GET /api/wheels/{id}
func (h *APIHandler) HandleGetWheel(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.Controller().Snapshot())
}

// HandleDeleteWheel handles DELETE /api/wheels/{id}
func (h *APIHandler) HandleDeleteWheel(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	h.service.CloseWheel(room.ID())
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetLayout handles GET /api/wheels/{id}/layout
func (h *APIHandler) HandleGetLayout(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	layout := room.Controller().Layout()
	resp := layoutResponse{
		WheelID:     room.ID().String(),
		ActiveCount: len(layout),
		Slices:      SliceViews(layout),
	}
	if len(layout) == 0 {
		resp.Placeholder = placeholderText
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAddEntry handles POST /api/wheels/{id}/entries
func (h *APIHandler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}

	var req addEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entry, err := room.Controller().AddEntry(r.Context(), name, strings.TrimSpace(req.ImageRef))
	if err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleClearEntries handles DELETE /api/wheels/{id}/entries
func (h *APIHandler) HandleClearEntries(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	if err := room.Controller().Clear(r.Context()); err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveEntry handles DELETE /api/wheels/{id}/entries/{entryID}
func (h *APIHandler) HandleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	room, entryID, ok := h.lookupEntry(w, r)
	if !ok {
		return
	}
	removed, err := room.Controller().RemoveEntry(r.Context(), entryID)
	if err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetHidden handles PUT /api/wheels/{id}/entries/{entryID}/hidden
func (h *APIHandler) HandleSetHidden(w http.ResponseWriter, r *http.Request) {
	room, entryID, ok := h.lookupEntry(w, r)
	if !ok {
		return
	}

	var req setHiddenRequest
	if err := decodeBody(r, &req); err != nil || req.Hidden == nil {
		writeError(w, http.StatusBadRequest, "hidden is required")
		return
	}

	found, err := room.Controller().SetHidden(r.Context(), entryID, *req.Hidden)
	if err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleHidden handles POST /api/wheels/{id}/entries/{entryID}/toggle
func (h *APIHandler) HandleToggleHidden(w http.ResponseWriter, r *http.Request) {
	room, entryID, ok := h.lookupEntry(w, r)
	if !ok {
		return
	}
	entry, found, err := room.Controller().ToggleHidden(r.Context(), entryID)
	if err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleSpin handles POST /api/wheels/{id}/spin. The spin outlives the
// request; clients follow it over the WebSocket.
func (h *APIHandler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	spin, err := room.Spin()
	if err != nil {
		writeControllerError(w, room.ID(), err)
		return
	}
	writeJSON(w, http.StatusAccepted, spin.Plan)
}

// HandleCancelSpin handles POST /api/wheels/{id}/spin/cancel
func (h *APIHandler) HandleCancelSpin(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	if room.Controller().CancelSpin() {
		log.Info().Str("wheel_id", room.ID().String()).Msg("spin cancel requested")
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHistory handles GET /api/wheels/{id}/history
func (h *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	outcomes, err := h.service.History(r.Context(), room.ID(), limit)
	if err != nil {
		log.Error().Err(err).Str("wheel_id", room.ID().String()).Msg("failed to list spin history")
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (h *APIHandler) lookupRoom(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	wheelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wheel id format")
		return nil, false
	}
	room, ok := h.service.Wheel(wheelID)
	if !ok {
		writeError(w, http.StatusNotFound, "wheel not found")
		return nil, false
	}
	return room, true
}

func (h *APIHandler) lookupEntry(w http.ResponseWriter, r *http.Request) (*Room, uuid.UUID, bool) {
	room, ok := h.lookupRoom(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}
	entryID, err := uuid.Parse(r.PathValue("entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id format")
		return nil, uuid.Nil, false
	}
	return room, entryID, true
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeControllerError(w http.ResponseWriter, wheelID uuid.UUID, err error) {
	if errors.Is(err, wheel.ErrInvalidState) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	log.Error().Err(err).Str("wheel_id", wheelID.String()).Msg("wheel operation failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
