/**
 * @description
 * This file defines the Go structs that model incoming webhook payloads from
 * StatTaq, the external athlete-data provider, along with the persisted
 * InboundEvent record and the internal sync-job message published for
 * data-changed events.
 *
 * @notes
 * - Every delivery is persisted verbatim as an InboundEvent before any
 *   handler runs, so failed processing is recoverable by replay.
 * - Event types follow StatTaq's "<namespace>.<action>" convention. The
 *   namespace segment doubles as the sync type for downstream jobs.
 */
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Recognized StatTaq webhook event types.
const (
	EventSocialUpdated       = "social.updated"
	EventStatsUpdated        = "stats.updated"
	EventNILValueUpdated     = "nil_value.updated"
	EventAccountDisconnected = "account.disconnected"
)

// StatTaqWebhookEvent represents the top-level structure of a webhook payload
// from StatTaq.
type StatTaqWebhookEvent struct {
	ID        string           `json:"id"`
	EventType string           `json:"event_type"`
	CreatedAt time.Time        `json:"created_at"`
	Data      StatTaqEventData `json:"data"`
}

// StatTaqEventData is the `data` object within the webhook payload.
type StatTaqEventData struct {
	StatTaqUserID    string          `json:"stattaq_user_id"`
	StatTaqAthleteID string          `json:"stattaq_athlete_id,omitempty"`
	Changes          json.RawMessage `json:"changes,omitempty"`
}

// InboundEvent is the persisted record of a webhook delivery. It is written
// before dispatch and annotated afterwards; the payload itself is immutable.
type InboundEvent struct {
	ID              string          `json:"id"`
	ExternalEventID string          `json:"external_event_id"`
	EventType       string          `json:"event_type"`
	Payload         json.RawMessage `json:"payload"`
	Signature       string          `json:"signature"`
	StatTaqUserID   string          `json:"stattaq_user_id"`
	AthleteID       *string         `json:"athlete_id,omitempty"`
	Processed       bool            `json:"processed"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	ReceivedAt      time.Time       `json:"received_at"`
}

// SyncJobMessage is published to RabbitMQ when a data-changed event is routed.
// Downstream sync workers consume it to refresh the athlete's StatTaq data.
type SyncJobMessage struct {
	AthleteID string `json:"athlete_id"`
	SyncType  string `json:"sync_type"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

// SyncType derives the sync type from an event type's namespace segment,
// e.g. "social.updated" -> "social".
func SyncType(eventType string) string {
	if idx := strings.Index(eventType, "."); idx > 0 {
		return eventType[:idx]
	}
	return eventType
}

// IsDataChangedEvent reports whether the event type triggers a downstream
// sync job.
func IsDataChangedEvent(eventType string) bool {
	switch eventType {
	case EventSocialUpdated, EventStatsUpdated, EventNILValueUpdated:
		return true
	}
	return false
}

// IsRecognizedEvent reports whether the event type belongs to the closed set
// the dispatcher routes. Unrecognized types are recorded and acknowledged but
// produce no side effects.
func IsRecognizedEvent(eventType string) bool {
	return IsDataChangedEvent(eventType) || eventType == EventAccountDisconnected
}
