//go:build e2e

package e2etest

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	queuecli "github.com/babylonlabs-io/staking-queue-client/client"
	queuecfg "github.com/babylonlabs-io/staking-queue-client/config"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/e2etest/container"
	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/queue"
	"github.com/babylonlabs-io/nft-staking/internal/services"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

var (
	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 1 * time.Second
)

type manualClock struct {
	now atomic.Int64
}

func (c *manualClock) Now() int64 {
	return c.now.Load()
}

func (c *manualClock) Advance(seconds int64) {
	c.now.Add(seconds)
}

type TestManager struct {
	Config     *config.Config
	Clock      *manualClock
	DbClient   *db.Database
	Ledger     *ledger.Ledger
	Queue      *queue.QueueManager
	Service    *services.Service
	EventsChan <-chan queuecli.QueueMessage
	manager    *container.Manager
	consumer   queuecli.QueueClient
}

// StartManager starts mongo and rabbitmq containers and wires a service on top of them
func StartManager(t *testing.T) *TestManager {
	ctx := t.Context()

	manager, err := container.NewManager(t)
	require.NoError(t, err)

	mongoAddress, err := manager.RunMongoResource(t)
	require.NoError(t, err)
	rabbitAddress, err := manager.RunRabbitMQResource(t)
	require.NoError(t, err)

	cfg := DefaultNftStakingConfig()
	cfg.Db.Address = mongoAddress
	cfg.Queue.Url = rabbitAddress
	require.NoError(t, cfg.Validate())

	require.NoError(t, model.Setup(ctx, &cfg.Db))
	dbClient, err := db.New(ctx, cfg.Db)
	require.NoError(t, err)

	qm, err := queue.NewQueueManager(ctx, &cfg.Queue)
	require.NoError(t, err)

	clock := &manualClock{}
	clock.now.Store(time.Now().Unix())
	book := ledger.New(dbClient)
	service := services.NewService(cfg, db.NewDbWithMetrics(dbClient), book, book, qm, clock)

	consumer, err := queuecli.NewQueueClient(&cfg.Queue.QueueConfig, cfg.Queue.QueueName)
	require.NoError(t, err)
	events, err := consumer.ReceiveMessages()
	require.NoError(t, err)

	return &TestManager{
		Config:     cfg,
		Clock:      clock,
		DbClient:   dbClient,
		Ledger:     book,
		Queue:      qm,
		Service:    service,
		EventsChan: events,
		manager:    manager,
		consumer:   consumer,
	}
}

func (tm *TestManager) Stop(t *testing.T) {
	tm.Queue.Shutdown()
	require.NoError(t, tm.consumer.Stop())
	require.NoError(t, tm.DbClient.Disconnect(context.Background()))
	require.NoError(t, tm.manager.ClearResources())
}

func DefaultNftStakingConfig() *config.Config {
	return &config.Config{
		Db: config.DbConfig{
			DbName:               "nft-staking-e2e",
			MaxConnectRetries:    10,
			ConnectRetryInterval: time.Second,
		},
		Queue: config.QueueConfig{
			QueueConfig: queuecfg.QueueConfig{
				QueueUser:     container.RabbitMQUser,
				QueuePassword: container.RabbitMQPassword,
				QueueType:     queuecfg.ClassicQueueType,
			},
			Enabled: true,
		},
		Metrics: config.MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
	}
}

// CheckNextStakingEvent waits for the next published event and checks its type and amount
func (tm *TestManager) CheckNextStakingEvent(t *testing.T, eventType types.EventType, amount uint64) *types.StakingEvent {
	var ev types.StakingEvent
	select {
	case message := <-tm.EventsChan:
		require.NoError(t, json.Unmarshal([]byte(message.Body), &ev))
		require.NotEmpty(t, ev.EventID)
		require.NoError(t, tm.consumer.DeleteMessage(message.Receipt))
	case <-time.After(eventuallyWaitTimeOut):
		t.Fatalf("no %s event received", eventType)
	}

	require.Equal(t, eventType, ev.EventType)
	require.Equal(t, amount, ev.Amount)
	return &ev
}
