package kafka

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
	"github.com/distillab/aspenplus/pkg/sink"
)

// PeerKafka publishes results to a Kafka topic
type PeerKafka struct {
	producer sarama.SyncProducer
	config   *Config
	topic    string
}

func (p *PeerKafka) Connect(config json.RawMessage, _ ...any) error {
	var cfg Config
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal Kafka config: %w", err)
	}

	// Set defaults if not provided
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = []string{"localhost:9092"}
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "aspenplus"
	}
	if cfg.Version == "" {
		cfg.Version = "2.1.1"
	}
	if cfg.Partitions == 0 {
		cfg.Partitions = 1
	}
	if cfg.Replicas == 0 {
		cfg.Replicas = 1
	}
	if cfg.RetentionMS == 0 {
		cfg.RetentionMS = 7 * 24 * 60 * 60 * 1000 // 7 days
	}

	saramaConfig, err := cfg.ToSaramaConfig()
	if err != nil {
		return err
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p.producer = producer
	p.config = &cfg
	p.topic = fmt.Sprintf("%s.results", cfg.TopicPrefix)

	// Create admin client for topic management
	admin, err := sarama.NewClusterAdmin(cfg.Brokers, saramaConfig)
	if err != nil {
		producer.Close()
		return fmt.Errorf("failed to create cluster admin: %w", err)
	}
	defer admin.Close()

	if err := p.ensureResultsTopic(admin); err != nil {
		producer.Close()
		return fmt.Errorf("failed to ensure results topic: %w", err)
	}

	return nil
}

func (p *PeerKafka) Pub(event sink.Event, _ ...any) error {
	if p.producer == nil {
		return fmt.Errorf("Kafka producer not initialized")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// Key by run so one run's points stay on one partition, in order
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf("Published result to topic %s [partition: %d, offset: %d]",
		p.topic, partition, offset)

	return nil
}

func (p *PeerKafka) Sub(_ ...any) (<-chan sink.Event, error) {
	return nil, sink.ErrConnectorTypeMismatch
}

func (p *PeerKafka) Type() sink.ConnectorType {
	return sink.ConnectorTypePub
}

func (p *PeerKafka) Disconnect() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func (p *PeerKafka) ensureResultsTopic(admin sarama.ClusterAdmin) error {
	topics, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("failed to list topics: %w", err)
	}

	if _, exists := topics[p.topic]; !exists {
		topicDetail := &sarama.TopicDetail{
			NumPartitions:     p.config.Partitions,
			ReplicationFactor: p.config.Replicas,
			ConfigEntries: map[string]*string{
				"retention.ms": stringPtr(fmt.Sprintf("%d", p.config.RetentionMS)),
			},
		}

		if err := admin.CreateTopic(p.topic, topicDetail, false); err != nil {
			return fmt.Errorf("failed to create results topic: %w", err)
		}

		log.Printf("Created results topic: %s", p.topic)
	}

	return nil
}

func stringPtr(s string) *string {
	return &s
}

func init() {
	sink.RegisterConnector(sink.ConnectorKafka, &PeerKafka{})
}
