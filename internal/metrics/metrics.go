/**
 * @description
 * Prometheus instrumentation for the webhook ingestion pipeline. Signature
 * failures are acknowledged 200 to the sender, so these counters (plus logs)
 * are the operator's only view into rejected or skipped deliveries.
 */
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignatureChecks counts webhook signature verification results by
	// outcome: verified, rejected, skipped.
	SignatureChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeup",
		Subsystem: "integration",
		Name:      "webhook_signature_checks_total",
		Help:      "Webhook signature verification results.",
	}, []string{"outcome"})

	// WebhookOutcomes counts the final pipeline outcome per delivery.
	WebhookOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeup",
		Subsystem: "integration",
		Name:      "webhook_events_total",
		Help:      "Inbound webhook deliveries by pipeline outcome.",
	}, []string{"outcome"})

	// SyncJobsPublished counts sync-job messages published to the broker,
	// labelled by sync type.
	SyncJobsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeup",
		Subsystem: "integration",
		Name:      "sync_jobs_published_total",
		Help:      "Sync jobs published to the athlete_sync exchange.",
	}, []string{"sync_type"})
)
