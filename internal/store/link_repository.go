/**
 * @description
 * Data access for StatTaq account links and the OAuth connect state tokens.
 * Links are soft-deactivated, never deleted; reconnecting reactivates the
 * athlete's existing row.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// LinkRepository persists external account links and connect states.
type LinkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, athlete_id, stattaq_user_id, is_active, sync_enabled, connected_at, disconnected_at`

func scanLink(row pgx.Row) (*domain.ExternalAccountLink, error) {
	var link domain.ExternalAccountLink
	err := row.Scan(
		&link.ID,
		&link.AthleteID,
		&link.StatTaqUserID,
		&link.IsActive,
		&link.SyncEnabled,
		&link.ConnectedAt,
		&link.DisconnectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// GetActiveLinkByStatTaqUserID resolves the active link for an external user
// id. Returns domain.ErrNotFound when no active link exists.
func (r *LinkRepository) GetActiveLinkByStatTaqUserID(ctx context.Context, statTaqUserID string) (*domain.ExternalAccountLink, error) {
	query := `SELECT ` + linkColumns + ` FROM external_account_links WHERE stattaq_user_id = $1 AND is_active = TRUE`
	link, err := scanLink(r.db.QueryRow(ctx, query, statTaqUserID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup link by stattaq user %s: %w", statTaqUserID, err)
	}
	return link, err
}

// GetLinkByAthleteID returns the athlete's link regardless of its active
// state. Returns domain.ErrNotFound when the athlete never connected.
func (r *LinkRepository) GetLinkByAthleteID(ctx context.Context, athleteID string) (*domain.ExternalAccountLink, error) {
	query := `SELECT ` + linkColumns + ` FROM external_account_links WHERE athlete_id = $1`
	link, err := scanLink(r.db.QueryRow(ctx, query, athleteID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup link by athlete %s: %w", athleteID, err)
	}
	return link, err
}

// ActivateLink creates the athlete's link or reactivates a previously
// disconnected one, pointing it at the given StatTaq user.
func (r *LinkRepository) ActivateLink(ctx context.Context, athleteID, statTaqUserID string) (*domain.ExternalAccountLink, error) {
	query := `
        INSERT INTO external_account_links (athlete_id, stattaq_user_id, is_active, sync_enabled, connected_at)
        VALUES ($1, $2, TRUE, TRUE, NOW())
        ON CONFLICT (athlete_id) DO UPDATE SET
            stattaq_user_id = EXCLUDED.stattaq_user_id,
            is_active = TRUE,
            sync_enabled = TRUE,
            connected_at = NOW(),
            disconnected_at = NULL
        RETURNING ` + linkColumns
	link, err := scanLink(r.db.QueryRow(ctx, query, athleteID, statTaqUserID))
	if err != nil {
		return nil, fmt.Errorf("activate link for athlete %s: %w", athleteID, err)
	}
	return link, nil
}

// DeactivateLink flips the link inactive, disables sync, and stamps the
// disconnect time. Already-inactive links are left untouched.
func (r *LinkRepository) DeactivateLink(ctx context.Context, linkID string) error {
	query := `
        UPDATE external_account_links
        SET is_active = FALSE, sync_enabled = FALSE, disconnected_at = NOW()
        WHERE id = $1 AND is_active = TRUE
    `
	if _, err := r.db.Exec(ctx, query, linkID); err != nil {
		return fmt.Errorf("deactivate link %s: %w", linkID, err)
	}
	return nil
}

// DeactivateLinkAndNotify deactivates the link and inserts the athlete's
// disconnect notification in one transaction. A link that is already inactive
// produces no notification: the disconnect was handled through another path.
func (r *LinkRepository) DeactivateLinkAndNotify(ctx context.Context, linkID string, n *domain.Notification) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin disconnect tx: %w", err)
	}
	defer tx.Rollback(ctx)

	deactivateQuery := `
        UPDATE external_account_links
        SET is_active = FALSE, sync_enabled = FALSE, disconnected_at = NOW()
        WHERE id = $1 AND is_active = TRUE
    `
	tag, err := tx.Exec(ctx, deactivateQuery, linkID)
	if err != nil {
		return fmt.Errorf("deactivate link %s: %w", linkID, err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	notificationQuery := `
        INSERT INTO notifications (user_id, title, message, action_url, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	if err := tx.QueryRow(ctx, notificationQuery, n.UserID, n.Title, n.Message, n.ActionURL).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("insert disconnect notification for user %s: %w", n.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit disconnect tx: %w", err)
	}
	return nil
}

// CreateState persists a fresh single-use connect state token.
func (r *LinkRepository) CreateState(ctx context.Context, state *domain.OAuthState) error {
	query := `
        INSERT INTO oauth_states (state, athlete_id, created_at, expires_at, used)
        VALUES ($1, $2, $3, $4, FALSE)
    `
	if _, err := r.db.Exec(ctx, query, state.State, state.AthleteID, state.CreatedAt, state.ExpiresAt); err != nil {
		return fmt.Errorf("insert oauth state: %w", err)
	}
	return nil
}

// ConsumeState atomically redeems a state token. Missing, expired, and
// already-used tokens all surface as domain.ErrNotFound.
func (r *LinkRepository) ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error) {
	query := `
        UPDATE oauth_states
        SET used = TRUE
        WHERE state = $1 AND used = FALSE AND expires_at > NOW()
        RETURNING state, athlete_id, created_at, expires_at, used
    `
	var st domain.OAuthState
	err := r.db.QueryRow(ctx, query, state).Scan(&st.State, &st.AthleteID, &st.CreatedAt, &st.ExpiresAt, &st.Used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	return &st, nil
}
