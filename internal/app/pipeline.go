/**
 * @description
 * The inbound-event pipeline for StatTaq webhooks. A delivery flows through
 * signature verification, verbatim recording, account linking, and event
 * dispatch, then is marked processed.
 *
 * Key invariants:
 * - A signature mismatch rejects the event before any persistence or side
 *   effect. The HTTP layer still acknowledges 200 so the sender does not
 *   redeliver an unfixable payload; the rejection is logged and counted.
 * - The InboundEvent row is written exactly once per delivery (keyed by the
 *   external event id) and always before dispatch. If that write fails the
 *   caller gets a retryable error and nothing else happens.
 * - "Processed" means "correctly routed". A downstream sync job failing later
 *   does not un-process the event. A failed publish, however, leaves the
 *   event unprocessed so the replay job can route it again.
 *
 * @dependencies
 * - internal/domain: event, link, and notification models.
 * - internal/metrics: outcome counters for operator visibility.
 * - pkg/rabbitmq (via the SyncPublisher interface): sync-job dispatch.
 */
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
	"github.com/Hempp/gradeup-nil-sub012/internal/metrics"
)

// Outcome is the final disposition of a webhook delivery.
type Outcome string

const (
	OutcomeSignatureRejected Outcome = "signature_rejected"
	OutcomeInvalidPayload    Outcome = "invalid_payload"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeUnlinked          Outcome = "unlinked"
	OutcomeSyncDispatched    Outcome = "sync_dispatched"
	OutcomeDisconnected      Outcome = "disconnected"
	OutcomeUnrecognized      Outcome = "unrecognized"
	OutcomeDispatchFailed    Outcome = "dispatch_failed"
)

// EventStore persists and annotates inbound events.
type EventStore interface {
	// RecordEvent inserts the event and returns false when the external event
	// id was already recorded (idempotent redelivery).
	RecordEvent(ctx context.Context, ev *domain.InboundEvent) (bool, error)
	SetAthleteID(ctx context.Context, eventID, athleteID string) error
	MarkProcessed(ctx context.Context, eventID string) error
	ListUnprocessed(ctx context.Context, limit int) ([]domain.InboundEvent, error)
}

// LinkStore resolves and mutates external account links.
type LinkStore interface {
	GetActiveLinkByStatTaqUserID(ctx context.Context, statTaqUserID string) (*domain.ExternalAccountLink, error)
	// DeactivateLinkAndNotify deactivates the link and creates the athlete's
	// notification in one transaction. If either write fails, neither sticks,
	// so a replayed disconnect event still finds the link active and routes
	// again instead of resolving as unlinked with the notification lost.
	DeactivateLinkAndNotify(ctx context.Context, linkID string, n *domain.Notification) error
}

// SyncPublisher publishes sync-job messages to the message broker.
type SyncPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// SyncExchange is the topic exchange sync-job messages are published to.
const SyncExchange = "athlete_sync"

// Pipeline wires the webhook ingestion stages together.
type Pipeline struct {
	verifier  *SignatureVerifier
	events    EventStore
	links     LinkStore
	publisher SyncPublisher
}

// NewPipeline creates the webhook ingestion pipeline.
func NewPipeline(verifier *SignatureVerifier, events EventStore, links LinkStore, publisher SyncPublisher) *Pipeline {
	return &Pipeline{
		verifier:  verifier,
		events:    events,
		links:     links,
		publisher: publisher,
	}
}

// Receive processes one raw webhook delivery. A non-nil error means the
// recorder write failed and the sender should redeliver; every other
// disposition is acknowledged.
func (p *Pipeline) Receive(ctx context.Context, body []byte, signature string) (Outcome, error) {
	// 1. Verify the signature before touching anything else.
	sigResult := p.verifier.Verify(body, signature)
	metrics.SignatureChecks.WithLabelValues(sigResult.String()).Inc()
	if sigResult == SignatureRejected {
		log.Printf("Rejected webhook delivery: signature mismatch")
		return p.finish(OutcomeSignatureRejected), nil
	}
	if sigResult == SignatureSkipped {
		log.Printf("Warning: STATTAQ_WEBHOOK_SECRET is not set. Signature verification skipped.")
	}

	// 2. Decode the payload. A malformed body can never succeed on retry, so
	// it is acknowledged and only surfaced via logs and counters.
	var wire domain.StatTaqWebhookEvent
	if err := json.Unmarshal(body, &wire); err != nil {
		log.Printf("Rejected webhook delivery: invalid JSON: %v", err)
		return p.finish(OutcomeInvalidPayload), nil
	}
	if wire.ID == "" || wire.EventType == "" {
		log.Printf("Rejected webhook delivery: missing id or event_type")
		return p.finish(OutcomeInvalidPayload), nil
	}

	// 3. Record the event verbatim before any dispatch.
	ev := &domain.InboundEvent{
		ExternalEventID: wire.ID,
		EventType:       wire.EventType,
		Payload:         json.RawMessage(body),
		Signature:       signature,
		StatTaqUserID:   wire.Data.StatTaqUserID,
		ReceivedAt:      time.Now().UTC(),
	}
	inserted, err := p.events.RecordEvent(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("record inbound event %s: %w", wire.ID, err)
	}
	if !inserted {
		log.Printf("Duplicate webhook delivery ignored: %s (%s)", wire.ID, wire.EventType)
		return p.finish(OutcomeDuplicate), nil
	}

	return p.route(ctx, ev), nil
}

// Reprocess re-runs linking and dispatch for an already-recorded event. Used
// by the replay job for events that never reached processed.
func (p *Pipeline) Reprocess(ctx context.Context, ev *domain.InboundEvent) Outcome {
	return p.route(ctx, ev)
}

// route resolves the account link, dispatches to the matching handler, and
// marks the event processed.
func (p *Pipeline) route(ctx context.Context, ev *domain.InboundEvent) Outcome {
	link, err := p.links.GetActiveLinkByStatTaqUserID(ctx, ev.StatTaqUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Events may arrive for accounts not yet linked or already
			// unlinked. The event stays recorded; there is nothing to route.
			log.Printf("No active link for StatTaq user %s, skipping dispatch for event %s", ev.StatTaqUserID, ev.ExternalEventID)
			p.markProcessed(ctx, ev)
			return p.finish(OutcomeUnlinked)
		}
		log.Printf("Link lookup failed for event %s: %v", ev.ExternalEventID, err)
		return p.finish(OutcomeDispatchFailed)
	}

	if err := p.events.SetAthleteID(ctx, ev.ID, link.AthleteID); err != nil {
		log.Printf("Failed to annotate event %s with athlete %s: %v", ev.ExternalEventID, link.AthleteID, err)
		return p.finish(OutcomeDispatchFailed)
	}
	ev.AthleteID = &link.AthleteID

	switch {
	case domain.IsDataChangedEvent(ev.EventType):
		syncType := domain.SyncType(ev.EventType)
		msg := domain.SyncJobMessage{
			AthleteID: link.AthleteID,
			SyncType:  syncType,
			EventID:   ev.ID,
			EventType: ev.EventType,
		}
		if err := p.publisher.Publish(ctx, SyncExchange, "sync."+syncType, msg); err != nil {
			// Routing failed; leave the event unprocessed for the replay job.
			log.Printf("Failed to publish sync job for event %s: %v", ev.ExternalEventID, err)
			return p.finish(OutcomeDispatchFailed)
		}
		metrics.SyncJobsPublished.WithLabelValues(syncType).Inc()
		p.markProcessed(ctx, ev)
		return p.finish(OutcomeSyncDispatched)

	case ev.EventType == domain.EventAccountDisconnected:
		n := &domain.Notification{
			UserID:    link.AthleteID,
			Title:     "StatTaq disconnected",
			Message:   "Your StatTaq account was disconnected. Reconnect it to keep your stats and NIL value up to date.",
			ActionURL: "/settings/connections",
		}
		if err := p.links.DeactivateLinkAndNotify(ctx, link.ID, n); err != nil {
			log.Printf("Failed to disconnect link %s for event %s: %v", link.ID, ev.ExternalEventID, err)
			return p.finish(OutcomeDispatchFailed)
		}
		p.markProcessed(ctx, ev)
		return p.finish(OutcomeDisconnected)

	default:
		// Unrecognized types are a no-op by contract. They are still marked
		// processed so the replay job does not spin on them.
		log.Printf("Unhandled webhook event type: %s (event %s)", ev.EventType, ev.ExternalEventID)
		p.markProcessed(ctx, ev)
		return p.finish(OutcomeUnrecognized)
	}
}

func (p *Pipeline) markProcessed(ctx context.Context, ev *domain.InboundEvent) {
	if err := p.events.MarkProcessed(ctx, ev.ID); err != nil {
		// The event was routed; the replay job will re-route it, and every
		// handler is idempotent enough to tolerate that.
		log.Printf("Failed to mark event %s processed: %v", ev.ExternalEventID, err)
	}
}

func (p *Pipeline) finish(outcome Outcome) Outcome {
	metrics.WebhookOutcomes.WithLabelValues(string(outcome)).Inc()
	return outcome
}
