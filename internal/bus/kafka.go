package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// KafkaBus publishes benchmark events to Kafka.
type KafkaBus struct {
	producer sarama.SyncProducer
	client   sarama.Client

	mu     sync.Mutex
	closed bool
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Version  string
}

// NewKafkaBus creates a Kafka-backed event bus.
func NewKafkaBus(cfg KafkaConfig) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.ValidationError("kafka brokers cannot be empty")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "search-roi"
	}
	if cfg.Version == "" {
		cfg.Version = "2.8.0"
	}

	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "invalid kafka version", err)
	}

	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Version = version
	kafkaConfig.ClientID = cfg.ClientID
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Net.DialTimeout = 10 * time.Second
	kafkaConfig.Net.WriteTimeout = 10 * time.Second

	client, err := sarama.NewClient(cfg.Brokers, kafkaConfig)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBackendUnavailable, "failed to create kafka client", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.CodeBackendUnavailable, "failed to create kafka producer", err)
	}

	return &KafkaBus{
		producer: producer,
		client:   client,
	}, nil
}

// Publish sends an event to a Kafka topic, keyed by run ID so one run's
// events stay in partition order.
func (b *KafkaBus) Publish(ctx context.Context, topic string, event Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New(errors.CodeInternal, "bus is closed")
	}
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to marshal event", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := b.producer.SendMessage(msg); err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to publish event", err)
	}
	return nil
}

func (b *KafkaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.producer.Close(); err != nil {
		b.client.Close()
		return err
	}
	return b.client.Close()
}
