package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/events"
)

const (
	sendTimeout     = 2 * time.Second
	eventTypeHeader = "event-type"
)

type producerConfig interface {
	Brokers() []string
	EventsTopic() string
}

// Producer forwards domain events to a topic as JSON, keyed by session so
// one chat's events stay ordered within a partition.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Timeout = sendTimeout

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create kafka producer")
	}
	return newProducer(producer, cfg.EventsTopic()), nil
}

func newProducer(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: producer, topic: topic}
}

func (p *Producer) Publish(sessionID int64, e events.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(sessionID, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventTypeHeader), Value: []byte(string(e.Entity) + "." + string(e.Action))},
		},
	})
	return errors.Wrap(err, "send event")
}

// Sink returns a bus handler publishing the events of one session. Send
// failures are logged and dropped.
func (p *Producer) Sink(sessionID int64) events.Handler {
	return events.HandlerFunc(func(_ context.Context, e events.Event) {
		if err := p.Publish(sessionID, e); err != nil {
			logger.Error("failed to publish event",
				zap.Int64("session", sessionID),
				zap.String("event", e.ID),
				zap.Error(err))
		}
	})
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
