package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// KafkaSink publishes events to a Kafka topic, keyed by appointment ID so
// all events for one appointment land on the same partition. A circuit
// breaker sheds writes during a broker outage; open-circuit failures are
// reported to the dispatcher, which logs the event instead.
type KafkaSink struct {
	writer  *kafka.Writer
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "notify-kafka",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &KafkaSink{writer: writer, breaker: breaker}
}

func (s *KafkaSink) Send(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding notification event: %w", err)
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(e.AppointmentID.String()),
			Value: payload,
		})
	})
	if err != nil {
		return fmt.Errorf("publishing notification event: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
