/**
 * @description
 * Scheduled job implementations for the integration-service.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Hempp/gradeup-nil-sub012/internal/config"
)

// replayTimeout bounds a single replay pass.
const replayTimeout = 2 * time.Minute

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	pipeline *Pipeline
	events   EventStore
	logger   *slog.Logger
	config   config.Config
}

// NewJobs creates a new Jobs runner.
func NewJobs(pipeline *Pipeline, events EventStore, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		pipeline: pipeline,
		events:   events,
		logger:   logger,
		config:   cfg,
	}
}

// ReplayUnprocessedEvents re-routes recorded events that never reached
// processed, typically because the broker or a store write was unavailable
// when the delivery arrived. Recording before dispatch exists precisely so
// this is safe.
func (j *Jobs) ReplayUnprocessedEvents() {
	j.logger.Info("starting unprocessed event replay job")
	ctx, cancel := context.WithTimeout(context.Background(), replayTimeout)
	defer cancel()

	events, err := j.events.ListUnprocessed(ctx, j.config.ReplayBatchSize)
	if err != nil {
		j.logger.Error("failed to list unprocessed events", "error", err)
		return
	}
	if len(events) == 0 {
		j.logger.Info("no unprocessed events to replay")
		return
	}

	routed := 0
	for i := range events {
		outcome := j.pipeline.Reprocess(ctx, &events[i])
		if outcome != OutcomeDispatchFailed {
			routed++
		}
	}

	j.logger.Info("unprocessed event replay job finished", "replayed", len(events), "routed", routed)
}
