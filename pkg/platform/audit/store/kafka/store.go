// Package kafka publishes audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "taxsafe/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client used by Store.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store implements audit.Store by producing one record per event. Records are
// keyed by business ID so events for a business stay ordered in a partition.
type Store struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Store {
	return &Store{producer: producer, topic: topic}
}

// NewClient builds a franz-go client for the given seed brokers.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the audit topic with broker-default replication when it
// does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32) error {
	if partitions <= 0 {
		partitions = -1
	}
	_, err := kadm.NewClient(client).CreateTopic(ctx, partitions, -1, nil, topic)
	if err == nil || errors.Is(err, kerr.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("create audit topic %q: %w", topic, err)
}

type payload struct {
	Category       string `json:"category"`
	Timestamp      string `json:"timestamp"`
	Action         string `json:"action"`
	Subject        string `json:"subject,omitempty"`
	BusinessID     string `json:"business_id,omitempty"`
	TaxYear        int    `json:"tax_year,omitempty"`
	RuleSetVersion string `json:"rule_set_version,omitempty"`
	Detail         string `json:"detail,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	ActorID        string `json:"actor_id,omitempty"`
}

// Record encodes an event as a Kafka record.
func (s *Store) Record(event audit.Event) (*kgo.Record, error) {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	value, err := json.Marshal(payload{
		Category:       string(category),
		Timestamp:      event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:         event.Action,
		Subject:        event.Subject,
		BusinessID:     event.BusinessID,
		TaxYear:        event.TaxYear,
		RuleSetVersion: event.RuleSetVersion,
		Detail:         event.Detail,
		RequestID:      event.RequestID,
		ActorID:        event.ActorID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	key := event.BusinessID
	if key == "" {
		key = event.Subject
	}
	return &kgo.Record{
		Topic: s.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(category)},
		},
	}, nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	record, err := s.Record(event)
	if err != nil {
		return err
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
