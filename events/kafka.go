package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Shopify/sarama"

	"library/log"
)

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// Publish keys messages by book so every event of one book lands on the same partition.
func (p *kafkaPublisher) Publish(ctx context.Context, m Message) error {
	value, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(m.BookID), 10)),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("error publishing %s message to %s topic: %w", m.Type, p.topic, err)
	}
	log.GetLogger(ctx).Debugf("%s message %s written to %s/%d@%d", m.Type, m.ID, p.topic, partition, offset)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) Publisher {
	return &kafkaPublisher{producer: producer, topic: topic}
}

// NewKafkaProducer dials brokers with a producer configured for SyncProducer use.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, cfg)
}
