package events

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"library/config"
)

type Publisher interface {
	Publish(ctx context.Context, m Message) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Message) error { return nil }
func (noopPublisher) Close() error                           { return nil }

// NewNoopPublisher returns a Publisher that drops every message.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

// New builds the Publisher selected by cfg.Events.Sink.
func New(ctx context.Context, cfg config.Config) (Publisher, error) {
	switch cfg.Events.Sink {
	case config.SinkNone, "":
		return NewNoopPublisher(), nil
	case config.SinkRedis:
		client := NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("error creating redis client %w", err)
		}
		return NewRedisPublisher(client, cfg.Events.Channel), nil
	case config.SinkKafka:
		producer, err := NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, fmt.Errorf("error creating kafka producer %w", err)
		}
		return NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Events.Sink)
	}
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}
