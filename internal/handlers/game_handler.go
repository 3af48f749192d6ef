package handlers

import (
	"errors"
	"net/http"

	"alfabeta/internal/catalog"
	"alfabeta/internal/models"
	"alfabeta/internal/service"
)

// GameHandler serves the child-facing game API
type GameHandler struct {
	catalog    *catalog.Catalog
	session    *service.SessionService
	controller *service.PracticeController
}

// NewGameHandler creates a new game handler
func NewGameHandler(c *catalog.Catalog, session *service.SessionService, controller *service.PracticeController) *GameHandler {
	return &GameHandler{catalog: c, session: session, controller: controller}
}

// GameState is the payload of every game endpoint
type GameState struct {
	service.Snapshot
	Attempt models.PracticeView `json:"attempt"`
}

type catalogResponse struct {
	Modes  []models.GameMode `json:"modes"`
	Levels []models.Level    `json:"levels"`
}

type startRequest struct {
	Mode  string `json:"mode"`
	Level int    `json:"level"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type levelRequest struct {
	Level int `json:"level"`
}

type placeRequest struct {
	Slot   string `json:"slot"`
	TileID string `json:"tileId"`
}

// Catalog lists the game modes and levels
func (h *GameHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalogResponse{Modes: h.catalog.Modes(), Levels: h.catalog.Levels()})
}

// State returns the session snapshot and the attempt in progress
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	h.respondState(w)
}

// Start begins a session in the requested mode and level
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModeCompleteWord
	}
	if req.Level == 0 {
		req.Level = 1
	}

	h.apply(w, func() error { return h.session.StartSession(req.Mode, req.Level) })
}

// Next abandons the current item and serves another one
func (h *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Advance(); err != nil {
		h.respondGameError(w, err)
		return
	}
	h.respondState(w)
}

// Mode switches the game mode
func (h *GameHandler) Mode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}
	h.apply(w, func() error { return h.session.ChangeMode(req.Mode) })
}

// Level switches the level
func (h *GameHandler) Level(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}
	h.apply(w, func() error { return h.session.ChangeLevel(req.Level) })
}

// NewSession starts over after the summary screen
func (h *GameHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	h.apply(w, h.session.StartNewSession)
}

// Place drops a tile into a slot
func (h *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}

	if _, err := h.controller.PlaceTile(req.Slot, req.TileID); err != nil {
		h.respondGameError(w, err)
		return
	}
	h.respondState(w)
}

// apply runs a session change and loads the resulting item into the controller
func (h *GameHandler) apply(w http.ResponseWriter, change func() error) {
	if err := change(); err != nil {
		h.respondGameError(w, err)
		return
	}
	h.controller.Sync()
	h.respondState(w)
}

func (h *GameHandler) respondState(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, GameState{
		Snapshot: h.session.Snapshot(),
		Attempt:  h.controller.View(),
	})
}

func (h *GameHandler) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrUnknownLevel),
		errors.Is(err, service.ErrUnknownSlot),
		errors.Is(err, service.ErrUnknownTile):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrSlotFilled),
		errors.Is(err, service.ErrTileUsed),
		errors.Is(err, service.ErrAttemptLocked),
		errors.Is(err, service.ErrNoActiveItem):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Game operation failed", err)
	}
}
