// Package eventstreamutils constructs a product event publisher from
// configuration.
package eventstreamutils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/eventstream"
	"github.com/minimartco/minimart/pkg/eventstream/kafka"
	"github.com/minimartco/minimart/pkg/eventstream/nop"
)

// NewPublisherOpts selects and configures a publisher backend.
type NewPublisherOpts struct {
	// Provider is one of "nop", "kafka".
	Provider string

	// Brokers is a comma-separated list of Kafka bootstrap brokers.
	Brokers string

	// Topic is the Kafka topic product events are published to.
	Topic string
}

// NewPublisher creates the configured publisher backend.
func NewPublisher(o *NewPublisherOpts, logger *zap.Logger) (eventstream.Publisher, error) {
	switch o.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil

	case "kafka":
		brokers := splitBrokers(o.Brokers)
		return kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   o.Topic,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown events provider: %q (available: nop, kafka)", o.Provider)
	}
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
