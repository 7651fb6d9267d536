package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

type fakeVerificationStore struct {
	perm     *domain.ReviewerPermission
	athlete  *domain.Athlete
	applied  []domain.ApplyDecisionParams
	applyErr error
}

func (f *fakeVerificationStore) GetReviewerPermission(_ context.Context, reviewerID string) (*domain.ReviewerPermission, error) {
	if f.perm == nil || f.perm.ReviewerID != reviewerID {
		return nil, domain.ErrNotFound
	}
	return f.perm, nil
}

func (f *fakeVerificationStore) GetAthlete(_ context.Context, athleteID string) (*domain.Athlete, error) {
	if f.athlete == nil || f.athlete.ID != athleteID {
		return nil, domain.ErrNotFound
	}
	return f.athlete, nil
}

func (f *fakeVerificationStore) ApplyDecision(_ context.Context, params domain.ApplyDecisionParams) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, params)
	return nil
}

func gradesReviewer(institutionID string) *domain.ReviewerPermission {
	return &domain.ReviewerPermission{
		ReviewerID:      "reviewer-1",
		InstitutionID:   institutionID,
		CanVerifyGrades: true,
		CanVerifySport:  true,
	}
}

func TestDecide_UnknownCallerIsNotAReviewer(t *testing.T) {
	store := &fakeVerificationStore{}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "stranger",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimGrades,
		Approved:   true,
	})
	if !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Error("unauthorized decision must not be applied")
	}
}

func TestDecide_MissingReviewerID(t *testing.T) {
	svc := NewVerificationService(&fakeVerificationStore{})

	err := svc.Decide(context.Background(), DecisionRequest{AthleteID: "athlete-1", ClaimType: domain.ClaimSport})
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestDecide_CapabilityFlagRequired(t *testing.T) {
	store := &fakeVerificationStore{
		perm: &domain.ReviewerPermission{
			ReviewerID:          "reviewer-1",
			InstitutionID:       "inst-A",
			CanVerifyEnrollment: false,
		},
		athlete: &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-A"},
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimEnrollment,
		Approved:   true,
	})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Error("denied decision must not be applied")
	}
}

func TestDecide_IdentityClaimsNeverPassThisGate(t *testing.T) {
	store := &fakeVerificationStore{
		perm: &domain.ReviewerPermission{
			ReviewerID:        "reviewer-1",
			InstitutionID:     "inst-A",
			CanVerifyIdentity: true, // flag is set, gate still refuses
		},
		athlete: &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-A"},
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimIdentity,
		Approved:   true,
	})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for identity claim, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Error("identity decision must not be applied")
	}
}

func TestDecide_InstitutionScopeEnforced(t *testing.T) {
	store := &fakeVerificationStore{
		perm:    gradesReviewer("inst-A"),
		athlete: &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-B"},
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimGrades,
		Approved:   true,
	})
	if !errors.Is(err, domain.ErrScope) {
		t.Fatalf("expected ErrScope, got %v", err)
	}
	// A scope failure leaves no trace: no mutation, no notification, no audit.
	if len(store.applied) != 0 {
		t.Error("out-of-scope decision must not be applied")
	}
}

func TestDecide_AthleteNotFound(t *testing.T) {
	store := &fakeVerificationStore{perm: gradesReviewer("inst-A")}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "missing",
		ClaimType:  domain.ClaimGrades,
		Approved:   true,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecide_ApprovalAppliesAtomicUnit(t *testing.T) {
	store := &fakeVerificationStore{
		perm:    gradesReviewer("inst-A"),
		athlete: &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-A"},
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimSport,
		Approved:   true,
		Notes:      "roster confirmed",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(store.applied) != 1 {
		t.Fatalf("expected exactly one atomic apply, got %d", len(store.applied))
	}
	params := store.applied[0]
	if !params.Decision.Approved {
		t.Error("expected approved decision")
	}
	if params.Decision.DecidedAt.IsZero() {
		t.Error("expected a non-zero decision timestamp")
	}
	if params.Decision.ReviewerID != "reviewer-1" {
		t.Errorf("expected decision attributed to reviewer-1, got %q", params.Decision.ReviewerID)
	}
	if params.Notification.UserID != "athlete-1" {
		t.Errorf("expected notification addressed to the athlete, got %q", params.Notification.UserID)
	}
	if params.Audit.Action != "verification.approved" {
		t.Errorf("unexpected audit action %q", params.Audit.Action)
	}
	if params.Audit.ActorID != "reviewer-1" || params.Audit.TargetID != "athlete-1" {
		t.Errorf("unexpected audit actor/target: %+v", params.Audit)
	}
}

func TestDecide_RejectionIsRevocation(t *testing.T) {
	// Rejecting a previously-approved claim revokes it outright: the store
	// receives Approved=false, which clears the verified flag and timestamp
	// rather than merely leaving the claim unverified.
	store := &fakeVerificationStore{
		perm:    gradesReviewer("inst-A"),
		athlete: &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-A"},
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID:      "reviewer-1",
		AthleteID:       "athlete-1",
		ClaimType:       domain.ClaimGrades,
		Approved:        false,
		RejectionReason: "transcript did not match",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(store.applied) != 1 {
		t.Fatalf("expected exactly one atomic apply, got %d", len(store.applied))
	}
	params := store.applied[0]
	if params.Decision.Approved {
		t.Fatal("rejection must revoke, not approve")
	}
	if params.Decision.RejectionReason != "transcript did not match" {
		t.Errorf("rejection reason not carried through: %q", params.Decision.RejectionReason)
	}
	if params.Audit.Action != "verification.rejected" {
		t.Errorf("unexpected audit action %q", params.Audit.Action)
	}
}

func TestDecide_ApplyFailurePropagates(t *testing.T) {
	store := &fakeVerificationStore{
		perm:     gradesReviewer("inst-A"),
		athlete:  &domain.Athlete{ID: "athlete-1", InstitutionID: "inst-A"},
		applyErr: errors.New("tx aborted"),
	}
	svc := NewVerificationService(store)

	err := svc.Decide(context.Background(), DecisionRequest{
		ReviewerID: "reviewer-1",
		AthleteID:  "athlete-1",
		ClaimType:  domain.ClaimGrades,
		Approved:   true,
	})
	if err == nil {
		t.Fatal("expected apply failure to propagate")
	}
}
