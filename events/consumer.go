package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shopify/sarama"

	"library/log"
)

// groupHandler hands every decodable message of a claim to handle and marks it
// consumed. Undecodable payloads are logged, marked and skipped.
type groupHandler struct {
	handle func(Message)
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	logger := log.GetLogger(session.Context())
	for {
		select {
		case <-session.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			m, err := Decode(msg.Value)
			if err != nil {
				logger.WithError(err).Errorf("Unmarshal err at %s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
			} else {
				h.handle(m)
			}
			session.MarkMessage(msg, "")
		}
	}
}

// Consume joins consumer group and delivers the messages of topic to handle
// until ctx is cancelled.
func Consume(ctx context.Context, brokers []string, topic, group string, handle func(Message)) error {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	client, err := sarama.NewConsumerGroup(brokers, group, cfg)
	if err != nil {
		return fmt.Errorf("error creating consumer group %s: %w", group, err)
	}
	defer func() { _ = client.Close() }()

	return consumeLoop(ctx, client, topic, &groupHandler{handle: handle})
}

func consumeLoop(ctx context.Context, cg sarama.ConsumerGroup, topic string, handler sarama.ConsumerGroupHandler) error {
	log.GetLogger(ctx).Infof("consuming topic %s", topic)
	for {
		// Consume returns on every rebalance, so it runs in a loop.
		if err := cg.Consume(ctx, []string{topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("error consuming %s: %w", topic, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
