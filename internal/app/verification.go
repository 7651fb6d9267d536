/**
 * @description
 * The verification decision flow. An athletic director approves or rejects an
 * athlete's verification claim; this service enforces the authorization gate
 * and hands the store one atomic unit of work.
 *
 * Gate order:
 *   1. The caller must be a registered reviewer.
 *   2. The reviewer's capability flag must cover the claim type. Identity
 *      claims are never decidable through this path, regardless of flags.
 *   3. The athlete must belong to the reviewer's institution.
 * Only then is the decision applied, together with the pending-request
 * closure, exactly one athlete notification, and exactly one audit entry, in
 * a single database transaction.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// VerificationStore is the data access the decision flow needs.
type VerificationStore interface {
	GetReviewerPermission(ctx context.Context, reviewerID string) (*domain.ReviewerPermission, error)
	GetAthlete(ctx context.Context, athleteID string) (*domain.Athlete, error)
	ApplyDecision(ctx context.Context, params domain.ApplyDecisionParams) error
}

// DecisionRequest is a reviewer's decision as received by the service layer.
type DecisionRequest struct {
	ReviewerID      string
	AthleteID       string
	ClaimType       domain.ClaimType
	Approved        bool
	Notes           string
	RejectionReason string
}

// VerificationService applies reviewer decisions to verification claims.
type VerificationService struct {
	store VerificationStore
}

// NewVerificationService creates the decision service.
func NewVerificationService(store VerificationStore) VerificationService {
	return VerificationService{store: store}
}

// Decide runs the authorization gate and applies the decision. Failures
// before the apply step leave no trace: no claim mutation, no notification,
// no audit entry.
func (s VerificationService) Decide(ctx context.Context, req DecisionRequest) error {
	if req.ReviewerID == "" {
		return domain.ErrAuthentication
	}

	perm, err := s.store.GetReviewerPermission(ctx, req.ReviewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAuthorization
		}
		return fmt.Errorf("resolve reviewer %s: %w", req.ReviewerID, err)
	}

	// Identity claims require the elevated compliance path, never this gate.
	if req.ClaimType == domain.ClaimIdentity {
		return domain.ErrPermissionDenied
	}
	if !perm.Allows(req.ClaimType) {
		return domain.ErrPermissionDenied
	}

	athlete, err := s.store.GetAthlete(ctx, req.AthleteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("athlete %s: %w", req.AthleteID, domain.ErrNotFound)
		}
		return fmt.Errorf("resolve athlete %s: %w", req.AthleteID, err)
	}
	if athlete.InstitutionID != perm.InstitutionID {
		return domain.ErrScope
	}

	now := time.Now().UTC()
	decision := domain.VerificationDecision{
		ReviewerID:      req.ReviewerID,
		AthleteID:       req.AthleteID,
		ClaimType:       req.ClaimType,
		Approved:        req.Approved,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
		DecidedAt:       now,
	}

	params := domain.ApplyDecisionParams{
		Decision:     decision,
		Notification: decisionNotification(decision),
		Audit: domain.AuditEntry{
			ActorID:  req.ReviewerID,
			Action:   auditAction(req.Approved),
			TargetID: req.AthleteID,
			Metadata: map[string]any{
				"claim_type":       string(req.ClaimType),
				"notes":            req.Notes,
				"rejection_reason": req.RejectionReason,
			},
		},
	}

	if err := s.store.ApplyDecision(ctx, params); err != nil {
		return fmt.Errorf("apply %s decision for athlete %s: %w", req.ClaimType, req.AthleteID, err)
	}

	log.Printf("Reviewer %s %s %s verification for athlete %s", req.ReviewerID, auditAction(req.Approved), req.ClaimType, req.AthleteID)
	return nil
}

func auditAction(approved bool) string {
	if approved {
		return "verification.approved"
	}
	return "verification.rejected"
}

func decisionNotification(d domain.VerificationDecision) domain.Notification {
	if d.Approved {
		return domain.Notification{
			UserID:    d.AthleteID,
			Title:     "Verification approved",
			Message:   fmt.Sprintf("Your %s verification was approved.", d.ClaimType),
			ActionURL: "/profile/verifications",
		}
	}
	msg := fmt.Sprintf("Your %s verification was rejected.", d.ClaimType)
	if d.RejectionReason != "" {
		msg = fmt.Sprintf("Your %s verification was rejected: %s", d.ClaimType, d.RejectionReason)
	}
	return domain.Notification{
		UserID:    d.AthleteID,
		Title:     "Verification rejected",
		Message:   msg,
		ActionURL: "/profile/verifications",
	}
}
