package infrastructure

import (
	"ronlotto/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher is an event publisher that does nothing
// Used when no NATS servers are configured and in one-shot CLI commands
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs the event type and drops it
func (n *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Dropping event, no publisher configured")
	return nil
}
