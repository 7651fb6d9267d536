package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Hempp/gradeup-nil-sub012/internal/config"
	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

func TestReplayUnprocessedEvents_RoutesStalledEvents(t *testing.T) {
	f := newPipelineFixture("s3cret")
	f.links.link = activeLink("athlete-1", "u1")
	f.events.unprocessed = []domain.InboundEvent{
		{
			ID:              "row-a",
			ExternalEventID: "evt_a",
			EventType:       domain.EventSocialUpdated,
			Payload:         json.RawMessage(`{}`),
			StatTaqUserID:   "u1",
			ReceivedAt:      time.Now().UTC().Add(-time.Hour),
		},
		{
			ID:              "row-b",
			ExternalEventID: "evt_b",
			EventType:       "foo.bar",
			Payload:         json.RawMessage(`{}`),
			StatTaqUserID:   "u1",
			ReceivedAt:      time.Now().UTC().Add(-time.Hour),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := NewJobs(f.pipeline, f.events, logger, config.Config{ReplayBatchSize: 10})

	jobs.ReplayUnprocessedEvents()

	if len(f.publisher.published) != 1 {
		t.Fatalf("expected 1 sync job from replay, got %d", len(f.publisher.published))
	}
	if len(f.events.processed) != 2 {
		t.Fatalf("expected both replayed events marked processed, got %v", f.events.processed)
	}
}

func TestReplayUnprocessedEvents_RespectsBatchSize(t *testing.T) {
	f := newPipelineFixture("s3cret")
	f.links.link = activeLink("athlete-1", "u1")
	for i := 0; i < 5; i++ {
		f.events.unprocessed = append(f.events.unprocessed, domain.InboundEvent{
			ID:              "row-" + string(rune('a'+i)),
			ExternalEventID: "evt-" + string(rune('a'+i)),
			EventType:       domain.EventStatsUpdated,
			Payload:         json.RawMessage(`{}`),
			StatTaqUserID:   "u1",
			ReceivedAt:      time.Now().UTC().Add(-time.Hour),
		})
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := NewJobs(f.pipeline, f.events, logger, config.Config{ReplayBatchSize: 2})

	jobs.ReplayUnprocessedEvents()

	if len(f.publisher.published) != 2 {
		t.Fatalf("expected batch size to cap replay at 2, got %d", len(f.publisher.published))
	}
}
