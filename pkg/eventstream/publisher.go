package eventstream

import "context"

// Publisher publishes product change events to an event stream backend.
type Publisher interface {
	PublishProduct(ctx context.Context, event *ProductEvent) error
	Close() error
}
