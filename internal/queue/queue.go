package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	queuecli "github.com/babylonlabs-io/staking-queue-client/client"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

const connectRetryDelay = time.Second

//go:generate mockery --name=PublisherInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_publisher.go
type PublisherInterface interface {
	PublishStakingEvent(ctx context.Context, ev *types.StakingEvent) error
}

// QueueManager pushes staking events to the staking events queue.
// A manager created from a disabled config drops every event.
type QueueManager struct {
	cfg *config.QueueConfig

	mu     sync.RWMutex
	client queuecli.QueueClient
}

var _ PublisherInterface = (*QueueManager)(nil)

func NewQueueManager(ctx context.Context, cfg *config.QueueConfig) (*QueueManager, error) {
	if !cfg.Enabled {
		log.Ctx(ctx).Info().Msg("Queue publishing is disabled")
		return &QueueManager{cfg: cfg}, nil
	}

	var client queuecli.QueueClient
	err := retry.Do(
		func() error {
			var err error
			client, err = queuecli.NewQueueClient(&cfg.QueueConfig, cfg.QueueName)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(cfg.MaxConnectRetries),
		retry.Delay(connectRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Err(err).
				Uint("attempt", n+1).
				Msg("rabbitmq is not reachable yet, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create staking events queue %s: %w", cfg.QueueName, err)
	}

	log.Ctx(ctx).Info().Str("queue", cfg.QueueName).Msg("Connected to queue")
	return newQueueManager(cfg, client), nil
}

func newQueueManager(cfg *config.QueueConfig, client queuecli.QueueClient) *QueueManager {
	return &QueueManager{cfg: cfg, client: client}
}

func (qm *QueueManager) PublishStakingEvent(ctx context.Context, ev *types.StakingEvent) error {
	if !qm.cfg.Enabled {
		return nil
	}

	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", ev.EventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	qm.mu.RLock()
	defer qm.mu.RUnlock()
	if qm.client == nil {
		return fmt.Errorf("failed to publish event %s: queue manager is shut down", ev.EventID)
	}

	if err := qm.client.SendMessage(ctx, string(body)); err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish event %s: %w", ev.EventID, err)
	}

	log.Ctx(ctx).Debug().
		Str("event_id", ev.EventID).
		Stringer("event_type", ev.EventType).
		Msg("Staking event published")
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()
	if qm.client == nil {
		return
	}
	if err := qm.client.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop queue client")
	}
	qm.client = nil
}
