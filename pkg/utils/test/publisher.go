package testutils

import (
	"context"
	"sync"

	"github.com/minimartco/minimart/pkg/eventstream"
)

// MockPublisher records published product events for assertions.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ProductEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishProduct(_ context.Context, event *eventstream.ProductEvent) error {
	if event == nil {
		return eventstream.ErrNilProductEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (m *MockPublisher) Events() []*eventstream.ProductEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*eventstream.ProductEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Close() error {
	return nil
}

// Ensure MockPublisher implements eventstream.Publisher
var _ eventstream.Publisher = (*MockPublisher)(nil)
