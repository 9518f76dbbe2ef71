package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/observability/tracing"
	"github.com/babylonlabs-io/nft-staking/internal/queue"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// Service is the staking lifecycle controller. Operations on one collection
// are serialized and each one runs in a single storage transaction, so the
// registry, the position and the collaborator side effects commit together.
type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	custody   ledger.CustodyInterface
	minter    ledger.MintInterface
	publisher queue.PublisherInterface
	clock     Clock
	locks     *keyedMutex
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	custody ledger.CustodyInterface,
	minter ledger.MintInterface,
	publisher queue.PublisherInterface,
	clock Clock,
) *Service {
	return &Service{
		cfg:       cfg,
		db:        db,
		custody:   custody,
		minter:    minter,
		publisher: publisher,
		clock:     clock,
		locks:     newKeyedMutex(),
	}
}

// execute runs fn in a transaction while holding the collection lock. fn must
// read the clock itself so that commit order and timestamps agree.
func (s *Service) execute(
	ctx context.Context, operation string, collection types.Identity, fn func(ctx context.Context) error,
) error {
	start := time.Now()

	unlock := s.locks.Lock(collection)
	err := s.db.WithTransaction(ctx, fn)
	unlock()

	metrics.RecordOperationDuration(time.Since(start), operation, err != nil)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Stringer("collection", collection).Msg("Operation failed")
	}
	return err
}

func (s *Service) operationContext(ctx context.Context, operation string) context.Context {
	return tracing.InjectOperation(ctx, operation)
}

func (s *Service) loadRegistry(ctx context.Context, id types.Identity) (*model.CollectionRegistry, error) {
	registry, err := s.db.GetCollectionRegistry(ctx, id)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrCollectionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get collection %s: %w", id, err)
	}
	return registry, nil
}

// loadPosition returns the open position of asset and checks that caller owns it.
func (s *Service) loadPosition(
	ctx context.Context, collection, asset, caller types.Identity,
) (*model.StakePosition, error) {
	position, err := s.db.GetStakePositionByAsset(ctx, collection, asset)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: asset %s", types.ErrPositionNotFound, asset)
		}
		return nil, fmt.Errorf("failed to get position of asset %s: %w", asset, err)
	}
	if position.Owner != caller {
		return nil, fmt.Errorf("%w: asset %s is staked by %s", types.ErrNotOwner, asset, position.Owner)
	}
	return position, nil
}

// commitRegistry checks next against prev and stores it.
func (s *Service) commitRegistry(ctx context.Context, prev, next *model.CollectionRegistry) error {
	if err := prev.CheckTransition(next); err != nil {
		return err
	}
	if err := s.db.UpdateCollectionRegistry(ctx, next); err != nil {
		return fmt.Errorf("failed to update collection %s: %w", next.ID, err)
	}
	return nil
}

// publish sends ev after its operation has been committed. Failures are only
// logged: the ledger is already final at this point.
func (s *Service) publish(ctx context.Context, ev *types.StakingEvent) {
	if err := s.publisher.PublishStakingEvent(ctx, ev); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Stringer("event_type", ev.EventType).
			Stringer("collection", ev.CollectionID).
			Msg("Failed to publish staking event")
	}
}

func newEvent(
	eventType types.EventType, registry *model.CollectionRegistry, actor types.Identity, now int64,
) *types.StakingEvent {
	return &types.StakingEvent{
		EventType:                  eventType,
		CollectionID:               registry.ID,
		Actor:                      actor,
		TotalStaked:                registry.TotalStaked,
		CurrentSupply:              registry.CurrentSupply,
		RewardsPerShareAccumulated: registry.RewardsPerShareAccumulated,
		Timestamp:                  now,
	}
}
