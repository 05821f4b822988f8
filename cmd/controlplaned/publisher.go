package main

import (
	"context"
	"log/slog"

	"github.com/45ck/Portarium-sub005/pkg/events"
)

// logPublisher writes published events to the structured log. It stands in
// for a real broker adapter in single-node deployments.
type logPublisher struct {
	logger *slog.Logger
}

func (p logPublisher) Publish(_ context.Context, event events.CloudEvent) error {
	p.logger.Info("event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"subject", event.Subject,
	)
	return nil
}
