/**
 * @description
 * Domain models for the athlete <-> StatTaq account linkage and the OAuth
 * connect flow.
 *
 * @notes
 * - Links are never hard-deleted. Disconnecting flips is_active and stamps
 *   disconnected_at so the linkage history stays available for audit.
 * - OAuthState rows are single-use CSRF tokens handed out by the connect
 *   endpoint and consumed on callback.
 */
package domain

import "time"

// ExternalAccountLink maps an internal athlete to a StatTaq user account.
type ExternalAccountLink struct {
	ID             string     `json:"id"`
	AthleteID      string     `json:"athlete_id"`
	StatTaqUserID  string     `json:"stattaq_user_id"`
	IsActive       bool       `json:"is_active"`
	SyncEnabled    bool       `json:"sync_enabled"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

// OAuthState is a pending CSRF state token for the StatTaq connect flow.
type OAuthState struct {
	State     string    `json:"state"`
	AthleteID string    `json:"athlete_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}
