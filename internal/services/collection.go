package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// InitializeCollection creates the collection of authority named name. The
// collection identity and its reward asset are derived from both.
func (s *Service) InitializeCollection(
	ctx context.Context, authority types.Identity, name string, maxSupply uint64,
) (*model.CollectionRegistry, error) {
	ctx = s.operationContext(ctx, "initialize_collection")
	if maxSupply == 0 {
		return nil, types.ErrInvalidMaxSupply
	}

	var (
		now      int64
		registry *model.CollectionRegistry
	)
	collection := types.DeriveCollectionID(authority, name)
	err := s.execute(ctx, "initialize_collection", collection, func(ctx context.Context) error {
		now = s.clock.Now()
		registry = model.NewCollectionRegistry(authority, name, maxSupply, now)
		if err := registry.CheckInvariants(); err != nil {
			return err
		}
		if err := s.db.SaveNewCollectionRegistry(ctx, registry); err != nil {
			if db.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: %s", types.ErrCollectionExists, registry.ID)
			}
			return fmt.Errorf("failed to save collection %s: %w", registry.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Stringer("collection", registry.ID).
		Str("name", name).
		Uint64("max_supply", maxSupply).
		Msg("Collection initialized")
	metrics.RecordCollectionState(registry.ID.String(), registry.TotalStaked, registry.RewardsPerShareAccumulated)
	s.publish(ctx, newEvent(types.EventCollectionInitialized, registry, authority, now))

	return registry, nil
}

// Issue creates the next asset of collection and hands it to caller, who must
// be the collection authority.
func (s *Service) Issue(ctx context.Context, collection, caller types.Identity) (types.Identity, error) {
	ctx = s.operationContext(ctx, "issue")

	var (
		now   int64
		asset types.Identity
		next  *model.CollectionRegistry
	)
	err := s.execute(ctx, "issue", collection, func(ctx context.Context) error {
		now = s.clock.Now()
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		if registry.CurrentSupply >= registry.MaxSupply {
			return fmt.Errorf("%w: %d of %d issued", types.ErrMaxSupplyReached,
				registry.CurrentSupply, registry.MaxSupply)
		}
		if caller != registry.Authority {
			return fmt.Errorf("%w: %s", types.ErrNotAuthorized, caller)
		}

		next = registry.Clone()
		next.CurrentSupply++
		asset = types.DeriveAssetID(registry.ID, next.CurrentSupply)

		err = s.custody.Issue(ctx, registry.ID, asset, caller, types.IssuerAuthority(registry.ID))
		if err != nil {
			return types.NewCollaboratorError(types.ErrMintFailed, err)
		}

		return s.commitRegistry(ctx, registry, next)
	})
	if err != nil {
		return types.Identity{}, err
	}

	log.Ctx(ctx).Info().
		Stringer("collection", collection).
		Stringer("asset", asset).
		Uint64("current_supply", next.CurrentSupply).
		Msg("Asset issued")

	ev := newEvent(types.EventAssetIssued, next, caller, now)
	ev.AssetID = &asset
	s.publish(ctx, ev)

	return asset, nil
}

func (s *Service) GetCollection(ctx context.Context, collection types.Identity) (*model.CollectionRegistry, error) {
	return s.loadRegistry(ctx, collection)
}

func (s *Service) ListCollections(ctx context.Context) ([]*model.CollectionRegistry, error) {
	return s.db.ListCollectionRegistries(ctx)
}

// RewardBalance returns how much of the collection reward asset holder owns.
func (s *Service) RewardBalance(ctx context.Context, collection, holder types.Identity) (uint64, error) {
	registry, err := s.loadRegistry(ctx, collection)
	if err != nil {
		return 0, err
	}
	return s.db.GetRewardBalance(ctx, registry.RewardAssetID, holder)
}
