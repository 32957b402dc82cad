package broker

import (
	"context"

	"authrules/internal/config"
	"authrules/internal/logger"
	"authrules/pkg/models"
)

// NewProducer returns a Kafka producer, or a no-op producer when no
// brokers are configured so callers never need a nil check.
func NewProducer(cfg config.BrokerConfig, log logger.Logger) Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warnw("No Kafka brokers configured, rule change events disabled")
		return NopProducer{}
	}
	return NewKafkaProducer(cfg.Kafka, log)
}

type NopProducer struct{}

func (NopProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	return nil
}

func (NopProducer) Close() error { return nil }
