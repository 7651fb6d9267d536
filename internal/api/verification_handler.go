/**
 * @description
 * The HTTP handler for athletic-director verification decisions. Parses and
 * validates the request, resolves the acting reviewer from the auth context,
 * and delegates the authorization gate to the service layer.
 */
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Hempp/gradeup-nil-sub012/internal/app"
	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// VerificationHandler holds the verification service.
type VerificationHandler struct {
	service  app.VerificationService
	validate *validator.Validate
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(service app.VerificationService, validate *validator.Validate) *VerificationHandler {
	return &VerificationHandler{service: service, validate: validate}
}

type decisionRequest struct {
	AthleteID        string `json:"athlete_id" validate:"required"`
	VerificationType string `json:"verification_type" validate:"required"`
	Status           string `json:"status" validate:"required,oneof=approved rejected"`
	Notes            string `json:"notes,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
}

// handleDecide applies an approve/reject decision to an athlete's claim.
func (h *VerificationHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "athlete_id, verification_type, and a status of approved or rejected are required"})
		return
	}

	claimType, ok := domain.ParseClaimType(req.VerificationType)
	if !ok {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown verification_type %q", req.VerificationType)})
		return
	}

	err := h.service.Decide(r.Context(), app.DecisionRequest{
		ReviewerID:      reviewerID,
		AthleteID:       req.AthleteID,
		ClaimType:       claimType,
		Approved:        req.Status == domain.DecisionApproved,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s verification %s", claimType, req.Status),
	})
}
