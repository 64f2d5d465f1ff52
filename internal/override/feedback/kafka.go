package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultDeliveryTimeout caps how long the client keeps retrying one record
// against unreachable brokers.
const DefaultDeliveryTimeout = 5 * time.Second

// KafkaPublisher produces feedback events to a Kafka topic, keyed by
// container so events for one shipment stay ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects a producer to brokers. Records that cannot be
// delivered within DefaultDeliveryTimeout fail; pass kgo.RecordDeliveryTimeout
// in opts to change that.
func NewKafkaPublisher(brokers []string, topic string, opts ...kgo.Opt) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("feedback topic is required")
	}
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(DefaultDeliveryTimeout),
	}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

// Publish produces e and waits for the broker acknowledgement or for ctx to
// end, whichever comes first.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.ContainerID),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce feedback event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
