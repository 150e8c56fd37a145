package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/config"
)

// Kafka publishes appointment events keyed by doctor id so all events for a
// doctor land on one partition in order.
type Kafka struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafka(cfg config.EventsConfig, log *zap.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.DoctorID.String()),
		Value: payload,
	})
	if err != nil {
		k.log.Warn("publishing appointment event",
			zap.String("type", string(ev.Type)),
			zap.String("reference", ev.ReferenceNumber),
			zap.Error(err),
		)
	}
	return err
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
