package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	queuecli "github.com/babylonlabs-io/staking-queue-client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

// recordingClient keeps every message sent to it.
type recordingClient struct {
	mu       sync.Mutex
	messages []string
	sendErr  error
	stopped  bool
}

var _ queuecli.QueueClient = (*recordingClient)(nil)

func (c *recordingClient) SendMessage(ctx context.Context, messageBody string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("send without deadline")
	}
	c.messages = append(c.messages, messageBody)
	return nil
}

func (c *recordingClient) ReceiveMessages() (<-chan queuecli.QueueMessage, error) {
	return nil, errors.New("not supported")
}

func (c *recordingClient) DeleteMessage(string) error { return nil }

func (c *recordingClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}

func (c *recordingClient) GetQueueName() string { return "test" }

func (c *recordingClient) ReQueueMessage(context.Context, queuecli.QueueMessage) error { return nil }

func (c *recordingClient) Ping(context.Context) error { return nil }

func enabledConfig() *config.QueueConfig {
	return &config.QueueConfig{
		Enabled:        true,
		QueueName:      "nft_staking_events",
		PublishTimeout: time.Second,
	}
}

func TestQueueManager_Disabled(t *testing.T) {
	ctx := t.Context()
	qm, err := NewQueueManager(ctx, &config.QueueConfig{Enabled: false})
	require.NoError(t, err)

	ev := &types.StakingEvent{EventType: types.EventAssetStaked}
	require.NoError(t, qm.PublishStakingEvent(ctx, ev))
	// nothing was sent so no id was assigned
	assert.Empty(t, ev.EventID)

	qm.Shutdown()
}

func TestQueueManager_PublishStakingEvent(t *testing.T) {
	ctx := t.Context()

	t.Run("sends the event as json", func(t *testing.T) {
		client := &recordingClient{}
		qm := newQueueManager(enabledConfig(), client)

		asset := testutil.RandomIdentity(t)
		ev := &types.StakingEvent{
			EventType:    types.EventRewardsClaimed,
			CollectionID: testutil.RandomIdentity(t),
			AssetID:      &asset,
			Amount:       1000,
		}
		require.NoError(t, qm.PublishStakingEvent(ctx, ev))
		assert.NotEmpty(t, ev.EventID)

		require.Len(t, client.messages, 1)
		var sent types.StakingEvent
		require.NoError(t, json.Unmarshal([]byte(client.messages[0]), &sent))
		assert.Equal(t, *ev, sent)
	})
	t.Run("send failure", func(t *testing.T) {
		boom := errors.New("boom")
		qm := newQueueManager(enabledConfig(), &recordingClient{sendErr: boom})

		err := qm.PublishStakingEvent(ctx, &types.StakingEvent{EventType: types.EventAssetStaked})
		require.ErrorIs(t, err, boom)
	})
	t.Run("after shutdown", func(t *testing.T) {
		client := &recordingClient{}
		qm := newQueueManager(enabledConfig(), client)
		qm.Shutdown()
		assert.True(t, client.stopped)

		err := qm.PublishStakingEvent(ctx, &types.StakingEvent{EventType: types.EventAssetStaked})
		require.Error(t, err)
		assert.Empty(t, client.messages)

		// a second shutdown is a no-op
		qm.Shutdown()
	})
}
