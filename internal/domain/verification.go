/**
 * @description
 * Domain models for athlete verification: claim types, reviewer permissions,
 * claims, pending review requests, and the decision record that the store
 * applies atomically together with its notification and audit entry.
 */
package domain

import "time"

// ClaimType identifies what aspect of an athlete's profile is being verified.
type ClaimType string

const (
	ClaimEnrollment ClaimType = "enrollment"
	ClaimSport      ClaimType = "sport"
	ClaimGrades     ClaimType = "grades"
	ClaimIdentity   ClaimType = "identity"
)

// ParseClaimType validates a raw verification_type value from a request.
func ParseClaimType(raw string) (ClaimType, bool) {
	switch ClaimType(raw) {
	case ClaimEnrollment, ClaimSport, ClaimGrades, ClaimIdentity:
		return ClaimType(raw), true
	}
	return "", false
}

// Decision statuses accepted by the verification endpoint.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Athlete is the read-only projection of an athlete this service needs.
type Athlete struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
}

// ReviewerPermission holds an athletic director's capability flags. A
// reviewer may only act on athletes at their own institution, and only for
// claim types their flags permit.
type ReviewerPermission struct {
	ReviewerID          string `json:"reviewer_id"`
	InstitutionID       string `json:"institution_id"`
	CanVerifyEnrollment bool   `json:"can_verify_enrollment"`
	CanVerifySport      bool   `json:"can_verify_sport"`
	CanVerifyGrades     bool   `json:"can_verify_grades"`
	CanVerifyIdentity   bool   `json:"can_verify_identity"`
}

// Allows reports whether the reviewer's flags permit the given claim type.
func (p ReviewerPermission) Allows(ct ClaimType) bool {
	switch ct {
	case ClaimEnrollment:
		return p.CanVerifyEnrollment
	case ClaimSport:
		return p.CanVerifySport
	case ClaimGrades:
		return p.CanVerifyGrades
	case ClaimIdentity:
		return p.CanVerifyIdentity
	}
	return false
}

// VerificationClaim is the standing verified flag per athlete and claim type.
type VerificationClaim struct {
	AthleteID  string     `json:"athlete_id"`
	ClaimType  ClaimType  `json:"claim_type"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// VerificationRequest is a pending review created when an athlete asks for
// verification. A decision closes it with the reviewer's identity and notes.
type VerificationRequest struct {
	ID              string     `json:"id"`
	AthleteID       string     `json:"athlete_id"`
	ClaimType       ClaimType  `json:"claim_type"`
	Status          string     `json:"status"`
	ReviewerID      *string    `json:"reviewer_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// VerificationDecision captures an authorized reviewer's decision on a claim.
// Rejection actively revokes: the verified flag goes false and the timestamp
// is cleared even if the claim was previously approved.
type VerificationDecision struct {
	ReviewerID      string
	AthleteID       string
	ClaimType       ClaimType
	Approved        bool
	Notes           string
	RejectionReason string
	DecidedAt       time.Time
}

// ApplyDecisionParams bundles everything the store must write in one
// transaction: the claim mutation, the pending-request closure, exactly one
// notification for the athlete, and exactly one audit entry.
type ApplyDecisionParams struct {
	Decision     VerificationDecision
	Notification Notification
	Audit        AuditEntry
}
