package ports

import (
	"context"

	"github.com/ProfAvery/flowy-servers/domain/events"
)

// EventPublisher sends domain events to subscribers outside the process
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// NoopEventPublisher drops every event
type NoopEventPublisher struct{}

// Publish implements EventPublisher
func (NoopEventPublisher) Publish(context.Context, ...events.DomainEvent) error { return nil }
