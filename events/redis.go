package events

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"library/log"
)

type redisPublisher struct {
	c       *redis.Client
	channel string
}

func (p *redisPublisher) Publish(ctx context.Context, m Message) error {
	if err := p.c.Publish(ctx, p.channel, m).Err(); err != nil {
		return fmt.Errorf("error publishing %s message to %s channel: %w", m.Type, p.channel, err)
	}
	log.GetLogger(ctx).Debugf("%s message %s published to channel :%s", m.Type, m.ID, p.channel)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.c.Close()
}

func NewRedisPublisher(c *redis.Client, channel string) Publisher {
	return &redisPublisher{c: c, channel: channel}
}

// Subscribe delivers every message published on channel to handle until ctx is
// cancelled. Payloads that cannot be decoded are logged and skipped.
func Subscribe(ctx context.Context, c *redis.Client, channel string, handle func(Message)) error {
	logger := log.GetLogger(ctx)
	pubsub := c.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("error subscribing to %s: %w", channel, err)
	}
	defer func() { _ = pubsub.Close() }()
	ch := pubsub.Channel()

	logger.Infof("listening on channel %s", channel)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			m, err := Decode([]byte(msg.Payload))
			if err != nil {
				logger.WithError(err).Errorf("Unmarshal err: %s", err)
				continue
			}
			handle(m)
		}
	}
}
