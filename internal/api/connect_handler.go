/**
 * @description
 * HTTP handlers for the StatTaq OAuth connect flow: start a connection,
 * complete the callback, and disconnect. All three require bearer auth; the
 * acting athlete is resolved from the request context.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Hempp/gradeup-nil-sub012/internal/app"
)

// ConnectHandler holds the connect service the handlers call into.
type ConnectHandler struct {
	service  app.ConnectService
	validate *validator.Validate
}

// NewConnectHandler creates a new ConnectHandler.
func NewConnectHandler(service app.ConnectService, validate *validator.Validate) *ConnectHandler {
	return &ConnectHandler{service: service, validate: validate}
}

// handleStart begins the OAuth flow for the authenticated athlete.
func (h *ConnectHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	session, err := h.service.Start(r.Context(), athleteID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"auth_url": session.AuthURL,
		"state":    session.State,
	})
}

type connectCallbackRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// handleCallback completes the OAuth flow after the provider redirect.
func (h *ConnectHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req connectCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "state and code are required"})
		return
	}

	link, err := h.service.Complete(r.Context(), athleteID, req.State, req.Code)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"link":    link,
	})
}

// handleDisconnect deactivates the athlete's own connection.
func (h *ConnectHandler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if err := h.service.Disconnect(r.Context(), athleteID); err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "StatTaq connection disconnected",
	})
}
