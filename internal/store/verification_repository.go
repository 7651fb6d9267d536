/**
 * @description
 * Data access for the verification decision flow. ApplyDecision runs the
 * claim mutation, the pending-request closure, the athlete notification, and
 * the audit entry in one transaction so a partial failure never leaves a
 * claim updated without its notification and audit trail.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// VerificationRepository persists reviewer permissions and claim decisions.
type VerificationRepository struct {
	db *pgxpool.Pool
}

// NewVerificationRepository creates a new verification repository.
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// GetReviewerPermission resolves a reviewer's capability flags. Returns
// domain.ErrNotFound when the caller is not a registered reviewer.
func (r *VerificationRepository) GetReviewerPermission(ctx context.Context, reviewerID string) (*domain.ReviewerPermission, error) {
	query := `
        SELECT reviewer_id, institution_id, can_verify_enrollment, can_verify_sport, can_verify_grades, can_verify_identity
        FROM reviewer_permissions
        WHERE reviewer_id = $1
    `
	var perm domain.ReviewerPermission
	err := r.db.QueryRow(ctx, query, reviewerID).Scan(
		&perm.ReviewerID,
		&perm.InstitutionID,
		&perm.CanVerifyEnrollment,
		&perm.CanVerifySport,
		&perm.CanVerifyGrades,
		&perm.CanVerifyIdentity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup reviewer %s: %w", reviewerID, err)
	}
	return &perm, nil
}

// GetAthlete returns the athlete's institution projection.
func (r *VerificationRepository) GetAthlete(ctx context.Context, athleteID string) (*domain.Athlete, error) {
	query := `SELECT id, institution_id FROM athletes WHERE id = $1`
	var athlete domain.Athlete
	err := r.db.QueryRow(ctx, query, athleteID).Scan(&athlete.ID, &athlete.InstitutionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup athlete %s: %w", athleteID, err)
	}
	return &athlete, nil
}

// ApplyDecision atomically applies a reviewer's decision. Approval sets
// verified=true and stamps the timestamp; rejection sets verified=false and
// clears it (active revocation, not merely declining).
func (r *VerificationRepository) ApplyDecision(ctx context.Context, params domain.ApplyDecisionParams) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback(ctx)

	d := params.Decision

	var verifiedAt any
	if d.Approved {
		verifiedAt = d.DecidedAt
	} else {
		verifiedAt = nil
	}
	claimQuery := `
        INSERT INTO verification_claims (athlete_id, claim_type, verified, verified_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (athlete_id, claim_type) DO UPDATE SET
            verified = EXCLUDED.verified,
            verified_at = EXCLUDED.verified_at
    `
	if _, err := tx.Exec(ctx, claimQuery, d.AthleteID, string(d.ClaimType), d.Approved, verifiedAt); err != nil {
		return fmt.Errorf("update %s claim for athlete %s: %w", d.ClaimType, d.AthleteID, err)
	}

	// Close the pending request if one exists; its absence is not an error.
	requestStatus := domain.DecisionRejected
	if d.Approved {
		requestStatus = domain.DecisionApproved
	}
	requestQuery := `
        UPDATE verification_requests
        SET status = $1, reviewer_id = $2, notes = NULLIF($3, ''), rejection_reason = NULLIF($4, ''), reviewed_at = $5
        WHERE athlete_id = $6 AND claim_type = $7 AND status = 'pending'
    `
	if _, err := tx.Exec(ctx, requestQuery, requestStatus, d.ReviewerID, d.Notes, d.RejectionReason, d.DecidedAt, d.AthleteID, string(d.ClaimType)); err != nil {
		return fmt.Errorf("close pending %s request for athlete %s: %w", d.ClaimType, d.AthleteID, err)
	}

	n := params.Notification
	notificationQuery := `
        INSERT INTO notifications (user_id, title, message, action_url, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err := tx.Exec(ctx, notificationQuery, n.UserID, n.Title, n.Message, n.ActionURL, d.DecidedAt); err != nil {
		return fmt.Errorf("insert decision notification: %w", err)
	}

	metadata, err := json.Marshal(params.Audit.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	auditQuery := `
        INSERT INTO audit_log (actor_id, action, target_id, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err := tx.Exec(ctx, auditQuery, params.Audit.ActorID, params.Audit.Action, params.Audit.TargetID, metadata, d.DecidedAt); err != nil {
		return fmt.Errorf("insert decision audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit decision tx: %w", err)
	}
	return nil
}
