package domain

import "time"

// Notification is a user-facing message row. The web app renders these in the
// athlete's inbox; ActionURL points at the page that resolves the situation.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry records who did what to whom. Kept transport-agnostic so stores
// and sinks can fan out.
type AuditEntry struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	TargetID  string         `json:"target_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
