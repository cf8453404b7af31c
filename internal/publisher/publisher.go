// Package publisher emits finished sentiment snapshots to Kafka so
// downstream consumers (dashboards, alerting) can react without polling
// the API.
package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/sentifi/internal/models"
)

const SNAPSHOT_TOPIC = "sentiment-snapshots"

var producer *kafka.Producer

// Enabled reports whether snapshot publishing is configured.
func Enabled() bool {
	return os.Getenv("KAFKA_BROKER") != ""
}

// InitProducer connects to the configured broker. Call Enabled first;
// publishing is optional and the pipeline runs fine without it.
func InitProducer() error {
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		return fmt.Errorf("[Publisher] KAFKA_BROKER not set")
	}

	slog.Info("[Publisher] Connecting to Kafka", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  broker,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		return fmt.Errorf("[Publisher] failed to create producer: %w", err)
	}

	producer = p
	go drainEvents()

	slog.Info("[Publisher] Kafka producer initialized")
	return nil
}

func drainEvents() {
	for e := range producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			slog.Error("[Publisher] delivery failed",
				slog.String("error", m.TopicPartition.Error.Error()))
		}
	}
}

// PublishSnapshot sends one snapshot, keyed by token so per-token ordering
// is preserved.
func PublishSnapshot(snapshot models.SentimentSnapshot) error {
	if producer == nil {
		return fmt.Errorf("[Publisher] producer not initialized")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("[Publisher] failed to marshal snapshot: %w", err)
	}

	topic := SNAPSHOT_TOPIC
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(snapshot.Token),
		Value:          payload,
	}

	for attempt := 1; attempt <= 3; attempt++ {
		err = producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[Publisher] produce failed, retrying...",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		time.Sleep(time.Duration(attempt) * 250 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("[Publisher] failed to publish snapshot: %w", err)
	}

	slog.Info("[Publisher] Published snapshot",
		slog.String("token", snapshot.Token),
		slog.Float64("score", snapshot.Score))
	return nil
}

func CloseProducer() {
	if producer != nil {
		producer.Flush(5000)
		producer.Close()
		slog.Info("[Publisher] Kafka producer shut down")
	}
}
