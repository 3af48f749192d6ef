package handlers

import (
	"errors"
	"net/http"
	"time"

	"alfabeta/internal/models"
	"alfabeta/internal/security"
	"alfabeta/internal/service"
	"alfabeta/internal/validation"

	"go.uber.org/zap"
)

// ParentHandler serves the PIN-protected parent area
type ParentHandler struct {
	session    *service.SessionService
	controller *service.PracticeController
	email      *service.EmailService
	tokens     *security.TokenManager
	csrf       *security.CSRFGenerator
	logger     *zap.Logger
}

// NewParentHandler creates a new parent handler
func NewParentHandler(session *service.SessionService, controller *service.PracticeController, email *service.EmailService, tokens *security.TokenManager, csrf *security.CSRFGenerator, logger *zap.Logger) *ParentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentHandler{
		session:    session,
		controller: controller,
		email:      email,
		tokens:     tokens,
		csrf:       csrf,
		logger:     logger,
	}
}

type loginRequest struct {
	PIN string `json:"pin"`
}

type loginResponse struct {
	CSRFToken string `json:"csrfToken"`
	ExpiresAt string `json:"expiresAt"`
}

type toggleResponse struct {
	WordID  string `json:"wordId"`
	Enabled bool   `json:"enabled"`
}

type reportRequest struct {
	Email string `json:"email"`
}

// Login checks the parent PIN and sets the parent token cookie
func (h *ParentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}

	if !h.session.VerifyParentPIN(req.PIN) {
		h.logger.Info("Parent PIN rejected", zap.String("ip", security.GetClientIP(r)))
		respondWithError(w, http.StatusUnauthorized, "PIN incorreto", "", nil)
		return
	}

	token, sessionID, expires, err := h.tokens.Issue()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to issue parent token", err)
		return
	}
	csrfToken, err := h.csrf.GenerateToken(sessionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, ParentCookieName, token, expires))
	respondJSON(w, http.StatusOK, loginResponse{CSRFToken: csrfToken, ExpiresAt: expires.UTC().Format(time.RFC3339)})
}

// Logout clears the parent token cookie
func (h *ParentHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, ParentCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the progress report
func (h *ParentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Dashboard())
}

// UpdateSettings applies a partial settings update
func (h *ParentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}

	settings, err := h.session.UpdateSettings(patch)
	if err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, "O PIN deve ter 4 dígitos.", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// ToggleWord enables or disables a word
func (h *ParentHandler) ToggleWord(w http.ResponseWriter, r *http.Request) {
	wordID := r.PathValue("id")
	enabled, err := h.session.ToggleWordEnabled(wordID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownWord) {
			respondWithError(w, http.StatusNotFound, "Word not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to toggle word", err)
		return
	}
	respondJSON(w, http.StatusOK, toggleResponse{WordID: wordID, Enabled: enabled})
}

// Reset erases all progress
func (h *ParentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ResetProgress(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to reset progress", err)
		return
	}
	h.controller.Sync()
	respondJSON(w, http.StatusOK, h.session.Dashboard())
}

// Report e-mails the progress report
func (h *ParentHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	err := h.email.SendProgressReport(r.Context(), req.Email, h.session.Dashboard())
	switch {
	case errors.Is(err, service.ErrEmailDisabled):
		respondWithError(w, http.StatusServiceUnavailable, "E-mail reports are not configured", "", nil)
	case err != nil:
		respondWithError(w, http.StatusBadGateway, "Failed to send report", "", err)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}
