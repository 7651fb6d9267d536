/**
 * @description
 * The StatTaq OAuth connect flow: start (hand the athlete an authorization
 * URL plus a fresh CSRF state), complete (validate the echoed state, exchange
 * the code, activate the link), and disconnect (athlete-initiated
 * deactivation).
 *
 * @notes
 * - Only one active link per athlete. Starting a connect with an active link
 *   is a conflict; the client must disconnect first.
 * - State tokens are single-use and expire. Consuming one that is missing,
 *   used, or expired fails validation.
 * - A previously disconnected link is reactivated in place rather than
 *   duplicated, preserving the linkage history.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// stateTTL bounds how long a handed-out connect state stays redeemable.
const stateTTL = 15 * time.Minute

// ConnectStore is the data access the connect flow needs.
type ConnectStore interface {
	GetLinkByAthleteID(ctx context.Context, athleteID string) (*domain.ExternalAccountLink, error)
	GetActiveLinkByStatTaqUserID(ctx context.Context, statTaqUserID string) (*domain.ExternalAccountLink, error)
	ActivateLink(ctx context.Context, athleteID, statTaqUserID string) (*domain.ExternalAccountLink, error)
	DeactivateLink(ctx context.Context, linkID string) error
	CreateState(ctx context.Context, state *domain.OAuthState) error
	ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error)
}

// AuditStore records audit entries outside the verification transaction.
type AuditStore interface {
	RecordAudit(ctx context.Context, entry *domain.AuditEntry) error
}

// StatTaqAuthClient is the subset of the StatTaq API client the connect flow
// uses.
type StatTaqAuthClient interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// ConnectSession is returned by Start for the client to open the provider's
// consent screen.
type ConnectSession struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// ConnectService manages the athlete's StatTaq account linkage.
type ConnectService struct {
	store  ConnectStore
	audits AuditStore
	client StatTaqAuthClient
}

// NewConnectService creates the connect service.
func NewConnectService(store ConnectStore, audits AuditStore, client StatTaqAuthClient) ConnectService {
	return ConnectService{store: store, audits: audits, client: client}
}

// Start begins the OAuth flow for an athlete with no active link.
func (s ConnectService) Start(ctx context.Context, athleteID string) (*ConnectSession, error) {
	if athleteID == "" {
		return nil, domain.ErrAuthentication
	}

	link, err := s.store.GetLinkByAthleteID(ctx, athleteID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing link for athlete %s: %w", athleteID, err)
	}
	if link != nil && link.IsActive {
		return nil, fmt.Errorf("athlete already has an active StatTaq connection: %w", domain.ErrConflict)
	}

	now := time.Now().UTC()
	state := &domain.OAuthState{
		State:     uuid.NewString(),
		AthleteID: athleteID,
		CreatedAt: now,
		ExpiresAt: now.Add(stateTTL),
	}
	if err := s.store.CreateState(ctx, state); err != nil {
		return nil, fmt.Errorf("persist connect state for athlete %s: %w", athleteID, err)
	}

	return &ConnectSession{
		AuthURL: s.client.AuthorizationURL(state.State),
		State:   state.State,
	}, nil
}

// Complete finishes the OAuth flow: the state must match the athlete, the
// code is exchanged for the StatTaq user id, and the link is activated.
func (s ConnectService) Complete(ctx context.Context, athleteID, state, code string) (*domain.ExternalAccountLink, error) {
	if athleteID == "" {
		return nil, domain.ErrAuthentication
	}

	pending, err := s.store.ConsumeState(ctx, state)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("state token is invalid, expired, or already used: %w", domain.ErrValidation)
		}
		return nil, fmt.Errorf("consume connect state: %w", err)
	}
	if pending.AthleteID != athleteID {
		return nil, fmt.Errorf("state token belongs to a different user: %w", domain.ErrValidation)
	}

	statTaqUserID, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	// The same StatTaq account cannot back two athletes at once.
	if existing, err := s.store.GetActiveLinkByStatTaqUserID(ctx, statTaqUserID); err == nil && existing.AthleteID != athleteID {
		return nil, fmt.Errorf("StatTaq account is already linked to another athlete: %w", domain.ErrConflict)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check StatTaq account ownership: %w", err)
	}

	link, err := s.store.ActivateLink(ctx, athleteID, statTaqUserID)
	if err != nil {
		return nil, fmt.Errorf("activate link for athlete %s: %w", athleteID, err)
	}

	log.Printf("Athlete %s connected StatTaq account %s", athleteID, statTaqUserID)
	return link, nil
}

// Disconnect deactivates the athlete's own link. The athlete initiated it,
// so no notification is emitted; the action is still audited.
func (s ConnectService) Disconnect(ctx context.Context, athleteID string) error {
	if athleteID == "" {
		return domain.ErrAuthentication
	}

	link, err := s.store.GetLinkByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no StatTaq connection: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("resolve link for athlete %s: %w", athleteID, err)
	}
	if !link.IsActive {
		return fmt.Errorf("StatTaq connection is already disconnected: %w", domain.ErrConflict)
	}

	if err := s.store.DeactivateLink(ctx, link.ID); err != nil {
		return fmt.Errorf("deactivate link %s: %w", link.ID, err)
	}

	if err := s.audits.RecordAudit(ctx, &domain.AuditEntry{
		ActorID:  athleteID,
		Action:   "connection.disconnected",
		TargetID: link.ID,
		Metadata: map[string]any{"stattaq_user_id": link.StatTaqUserID},
	}); err != nil {
		log.Printf("Failed to audit disconnect of link %s: %v", link.ID, err)
	}

	log.Printf("Athlete %s disconnected StatTaq account %s", athleteID, link.StatTaqUserID)
	return nil
}
