package nop

import (
	"context"

	"github.com/minimartco/minimart/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishProduct validates input and otherwise does nothing.
func (p *Publisher) PublishProduct(_ context.Context, event *eventstream.ProductEvent) error {
	if event == nil {
		return eventstream.ErrNilProductEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
