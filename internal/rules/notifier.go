package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	kafka "authrules/internal/broker"
	"authrules/pkg/logging"
	"authrules/pkg/models"
)

// RuleEventProducer publishes rule change notifications so rule engine
// instances can refresh their in-memory rule sets without polling.
type RuleEventProducer struct {
	producer kafka.Producer
	topic    string
}

func NewRuleEventProducer(producer kafka.Producer, topic string) *RuleEventProducer {
	return &RuleEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *RuleEventProducer) PublishRuleEvent(ctx context.Context, action, ruleType, ruleID, changedBy string) error {
	event := models.RuleChangeEvent{
		EventType: models.EventTypeRuleChanged,
		RuleType:  ruleType,
		RuleID:    ruleID,
		Action:    action,
		Timestamp: time.Now(),
		ChangedBy: changedBy,
	}
	return p.publishEvent(ctx, event)
}

func (p *RuleEventProducer) PublishImportEvent(ctx context.Context, changedBy string, imported, skipped int) error {
	event := models.RuleChangeEvent{
		EventType: models.EventTypeRulesImported,
		Action:    models.ActionImport,
		Timestamp: time.Now(),
		ChangedBy: changedBy,
		Metadata: map[string]interface{}{
			"imported": imported,
			"skipped":  skipped,
		},
	}
	return p.publishEvent(ctx, event)
}

func (p *RuleEventProducer) publishEvent(ctx context.Context, event models.RuleChangeEvent) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rule event: %w", err)
	}

	var eventData map[string]interface{}
	if err := json.Unmarshal(eventJSON, &eventData); err != nil {
		return fmt.Errorf("failed to unmarshal event data: %w", err)
	}

	builder := models.NewMessageEnvelopeBuilder().
		WithID(uuid.New().String()).
		WithSource("rules-service").
		WithPayload(eventData).
		WithAttribute("event_type", event.EventType)

	if event.RuleType != "" {
		builder = builder.WithAttribute("rule_type", event.RuleType)
	}
	if traceID := logging.GetTraceID(ctx); traceID != "" {
		builder = builder.WithTraceID(traceID)
	}

	return p.producer.Publish(ctx, p.topic, *builder.Build())
}
