//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "taxsafe/pkg/platform/audit"
	"taxsafe/pkg/testutil/containers"
)

func TestStore_AppendToRedpanda(t *testing.T) {
	const topic = "taxsafe.audit.it"
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	producer, err := NewClient([]string{broker.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(producer.Close)

	require.NoError(t, EnsureTopic(ctx, producer, topic, 2))
	require.NoError(t, EnsureTopic(ctx, producer, topic, 2), "existing topic is accepted")

	details, err := kadm.NewClient(producer).ListTopics(ctx, topic)
	require.NoError(t, err)
	require.True(t, details.Has(topic))
	assert.Len(t, details[topic].Partitions, 2)

	store := New(producer, topic)
	event := audit.Event{
		Timestamp:      time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Action:         string(audit.EventRuleSetActivated),
		Subject:        "ng-2025.1",
		RuleSetVersion: "ng-2025.1",
		RequestID:      "req-it",
	}
	require.NoError(t, store.Append(ctx, event))

	consumer := broker.Client(t,
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	fetches := consumer.PollRecords(ctx, 1)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ng-2025.1", string(records[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event.Action, got["action"])
	assert.Equal(t, "req-it", got["request_id"])
}
