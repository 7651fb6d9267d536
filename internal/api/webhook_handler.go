/**
 * @description
 * The HTTP handler for inbound StatTaq webhooks. It is the entry point for
 * all real-time notifications from the provider.
 *
 * Key features:
 * - Acknowledges 200 {"received": true} on every disposition except a failed
 *   recorder write. Signature mismatches and unrecognized event types are
 *   rejected internally, acknowledged externally, and surfaced to operators
 *   through logs and metrics; this prevents the provider's redelivery from
 *   storming an endpoint that can never accept the payload.
 * - A failed recorder write returns 500 so the provider's standard
 *   redelivery retries a genuinely transient failure.
 */
package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Hempp/gradeup-nil-sub012/internal/app"
)

// SignatureHeader carries the provider's HMAC signature of the request body.
const SignatureHeader = "X-StatTaq-Signature"

// EventReceiver processes one raw webhook delivery.
type EventReceiver interface {
	Receive(ctx context.Context, body []byte, signature string) (app.Outcome, error)
}

// WebhookHandler processes incoming webhooks from StatTaq.
type WebhookHandler struct {
	pipeline EventReceiver
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
func NewWebhookHandler(pipeline EventReceiver) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = fmt.Sprintf("req_%d", time.Now().UnixNano())
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[%s] Error reading webhook body: %v", requestID, err)
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot read request body"})
		return
	}

	outcome, err := h.pipeline.Receive(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		// The event was not recorded; the provider should redeliver.
		log.Printf("[%s] Webhook recording failed: %v", requestID, err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "event could not be recorded"})
		return
	}

	log.Printf("[%s] Webhook delivery handled (%s) in %v", requestID, outcome, time.Since(startTime))
	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
