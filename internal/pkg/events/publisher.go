// Package events publishes payment status changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

const TopicPaymentStatusChanged = "payment.status_changed"

// StatusChanged is emitted after a payment record changed status or
// notification state.
type StatusChanged struct {
	OrderID            string    `json:"order_id"`
	TransactionID      string    `json:"transaction_id,omitempty"`
	UserID             uint      `json:"user_id"`
	EventID            uint      `json:"event_id"`
	Status             string    `json:"status"`
	NotificationStatus string    `json:"notification_status,omitempty"`
	AmountMinor        int64     `json:"amount_minor"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChanged) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChanged) error { return nil }
func (NopPublisher) Close() error                                              { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher wraps an existing producer. Messages are keyed by order id
// so all events of one order land on the same partition.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = TopicPaymentStatusChanged
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

// NewPublisherFromEnv connects to KAFKA_BROKERS (comma separated). Without
// brokers a NopPublisher is returned.
func NewPublisherFromEnv() (Publisher, error) {
	raw := strings.TrimSpace(env.GetEnv("KAFKA_BROKERS", ""))
	if raw == "" {
		log.Info("[Events] KAFKA_BROKERS not set, status events disabled")
		return NopPublisher{}, nil
	}

	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.ClientID = "eventdesk"

	var producer sarama.SyncProducer
	var err error
	for i := 1; i <= 5; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Infof("[Events] Kafka producer connected to %v", brokers)
			return NewKafkaPublisher(producer, env.GetEnv("KAFKA_TOPIC_PAYMENT_STATUS", TopicPaymentStatusChanged)), nil
		}
		log.Warnf("[Events] Waiting for Kafka... (%d/5) Error: %v", i, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to start kafka producer: %w", err)
}

func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, evt StatusChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", p.topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.OrderID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send %s event for order %s: %w", p.topic, evt.OrderID, err)
	}
	log.Debugf("[Events] Published %s for order %s (partition=%d offset=%d)", p.topic, evt.OrderID, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
