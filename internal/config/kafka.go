package config

import (
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
)

// getKafkaBrokerURLs returns nil when KAFKA_BROKERS is unset; events are then only logged.
func getKafkaBrokerURLs() []string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}
	return splitList(brokers)
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{}, // events of one reservation land on one partition
		AllowAutoTopicCreation: true,
	}
}

// KafkaEnabled reports whether any broker is configured.
func (c KafkaConfig) KafkaEnabled() bool {
	return len(c.Brokers) > 0 && strings.TrimSpace(c.Topic) != ""
}
