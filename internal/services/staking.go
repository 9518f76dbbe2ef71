package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/internal/accrual"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// advance returns a copy of registry with the accumulator brought up to now.
func (s *Service) advance(
	ctx context.Context, registry *model.CollectionRegistry, now int64,
) (*model.CollectionRegistry, accrual.Step, error) {
	next := registry.Clone()
	step, err := accrual.Advance(next, now)
	if err != nil {
		return nil, accrual.Step{}, err
	}

	logger := log.Ctx(ctx)
	if registry.TotalStaked == 0 && step.Discarded > 0 {
		// nobody was staked, these rewards are gone
		logger.Warn().
			Stringer("collection", registry.ID).
			Uint64("elapsed", step.Elapsed).
			Uint64("discarded", step.Discarded).
			Msg("Rewards emitted while nothing was staked were discarded")
	} else {
		logger.Debug().
			Stringer("collection", registry.ID).
			Uint64("elapsed", step.Elapsed).
			Uint64("delta", step.Delta).
			Uint64("discarded", step.Discarded).
			Msg("Accumulator advanced")
	}
	return next, step, nil
}

// Stake moves asset from caller into the collection vault and opens a
// position that starts earning from the current accumulator.
func (s *Service) Stake(
	ctx context.Context, collection, caller, asset types.Identity,
) (*model.StakePosition, error) {
	ctx = s.operationContext(ctx, "stake")

	var (
		now      int64
		position *model.StakePosition
		next     *model.CollectionRegistry
		step     accrual.Step
	)
	err := s.execute(ctx, "stake", collection, func(ctx context.Context) error {
		now = s.clock.Now()
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		next, step, err = s.advance(ctx, registry, now)
		if err != nil {
			return err
		}

		_, err = s.db.GetStakePositionByAsset(ctx, collection, asset)
		switch {
		case err == nil:
			return fmt.Errorf("%w: asset %s", types.ErrPositionExists, asset)
		case !db.IsNotFoundError(err):
			return fmt.Errorf("failed to check position of asset %s: %w", asset, err)
		}

		issuedBy, err := s.custody.CollectionOf(ctx, asset)
		if err != nil {
			return types.NewCollaboratorError(types.ErrCustodyTransferFailed, err)
		}
		if issuedBy != collection {
			return fmt.Errorf("%w: asset %s belongs to %s", types.ErrAssetNotInCollection, asset, issuedBy)
		}

		vault := types.DeriveVaultID(asset)
		if err := s.custody.Transfer(ctx, asset, caller, vault, types.SignerAuthority(caller)); err != nil {
			return types.NewCollaboratorError(types.ErrCustodyTransferFailed, err)
		}

		position = model.NewStakePosition(next, caller, asset, now)
		if err := s.db.SaveNewStakePosition(ctx, position); err != nil {
			if db.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: asset %s", types.ErrPositionExists, asset)
			}
			return fmt.Errorf("failed to save position of asset %s: %w", asset, err)
		}

		next.TotalStaked++
		return s.commitRegistry(ctx, registry, next)
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Stringer("collection", collection).
		Stringer("asset", asset).
		Stringer("owner", caller).
		Uint64("total_staked", next.TotalStaked).
		Msg("Asset staked")
	s.recordCommitted(next, step, 0)

	ev := newEvent(types.EventAssetStaked, next, caller, now)
	ev.AssetID = &asset
	s.publish(ctx, ev)

	return position, nil
}

// Claim pays out everything the position of asset has earned so far. Nothing
// is minted and the position is left as it is when there is nothing to pay.
func (s *Service) Claim(ctx context.Context, collection, caller, asset types.Identity) (uint64, error) {
	ctx = s.operationContext(ctx, "claim")

	var (
		now    int64
		amount uint64
		next   *model.CollectionRegistry
		step   accrual.Step
	)
	err := s.execute(ctx, "claim", collection, func(ctx context.Context) error {
		now = s.clock.Now()
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		next, step, err = s.advance(ctx, registry, now)
		if err != nil {
			return err
		}

		position, err := s.loadPosition(ctx, collection, asset, caller)
		if err != nil {
			return err
		}

		amount, err = accrual.Settle(position, next)
		if err != nil {
			return err
		}

		if amount > 0 {
			if err := s.mintRewards(ctx, next, amount, position.Owner); err != nil {
				return err
			}

			position.MarkSettled(next.RewardsPerShareAccumulated)
			if err := s.db.UpdateStakePosition(ctx, position); err != nil {
				return fmt.Errorf("failed to update position of asset %s: %w", asset, err)
			}
		}

		return s.commitRegistry(ctx, registry, next)
	})
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().
		Stringer("collection", collection).
		Stringer("asset", asset).
		Uint64("amount", amount).
		Msg("Rewards claimed")
	s.recordCommitted(next, step, amount)

	if amount > 0 {
		ev := newEvent(types.EventRewardsClaimed, next, caller, now)
		ev.AssetID = &asset
		ev.Amount = amount
		s.publish(ctx, ev)
	}

	return amount, nil
}

// Unstake pays out the position of asset, returns the asset to its owner and
// closes the position. It returns the amount paid.
func (s *Service) Unstake(ctx context.Context, collection, caller, asset types.Identity) (uint64, error) {
	ctx = s.operationContext(ctx, "unstake")

	var (
		now    int64
		amount uint64
		next   *model.CollectionRegistry
		step   accrual.Step
	)
	err := s.execute(ctx, "unstake", collection, func(ctx context.Context) error {
		now = s.clock.Now()
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		next, step, err = s.advance(ctx, registry, now)
		if err != nil {
			return err
		}

		position, err := s.loadPosition(ctx, collection, asset, caller)
		if err != nil {
			return err
		}

		amount, err = accrual.Settle(position, next)
		if err != nil {
			return err
		}
		if amount > 0 {
			if err := s.mintRewards(ctx, next, amount, position.Owner); err != nil {
				return err
			}
		}

		vault := types.DeriveVaultID(asset)
		err = s.custody.Transfer(ctx, asset, vault, position.Owner, types.VaultAuthority(asset))
		if err != nil {
			return types.NewCollaboratorError(types.ErrCustodyTransferFailed, err)
		}

		if next.TotalStaked == 0 {
			return fmt.Errorf("%w: open position in collection with nothing staked", types.ErrInvariantViolation)
		}
		next.TotalStaked--

		if err := s.db.DeleteStakePosition(ctx, position.ID); err != nil {
			return fmt.Errorf("failed to delete position of asset %s: %w", asset, err)
		}

		return s.commitRegistry(ctx, registry, next)
	})
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().
		Stringer("collection", collection).
		Stringer("asset", asset).
		Uint64("amount", amount).
		Uint64("total_staked", next.TotalStaked).
		Msg("Asset unstaked")
	s.recordCommitted(next, step, amount)

	ev := newEvent(types.EventAssetUnstaked, next, caller, now)
	ev.AssetID = &asset
	ev.Amount = amount
	s.publish(ctx, ev)

	return amount, nil
}

func (s *Service) mintRewards(
	ctx context.Context, registry *model.CollectionRegistry, amount uint64, to types.Identity,
) error {
	err := s.minter.Mint(ctx, registry.RewardAssetID, amount, to, types.RewardMintAuthority(registry.ID))
	if err != nil {
		return types.NewCollaboratorError(types.ErrMintFailed, err)
	}
	return nil
}

func (s *Service) recordCommitted(registry *model.CollectionRegistry, step accrual.Step, minted uint64) {
	collection := registry.ID.String()
	metrics.RecordCollectionState(collection, registry.TotalStaked, registry.RewardsPerShareAccumulated)
	if step.Discarded > 0 {
		metrics.RecordRewardsDiscarded(collection, step.Discarded)
	}
	if minted > 0 {
		metrics.RecordRewardsMinted(collection, minted)
	}
}

// GetPosition returns the open position of asset.
func (s *Service) GetPosition(ctx context.Context, collection, asset types.Identity) (*model.StakePosition, error) {
	position, err := s.db.GetStakePositionByAsset(ctx, collection, asset)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: asset %s", types.ErrPositionNotFound, asset)
		}
		return nil, err
	}
	return position, nil
}

// PendingRewards returns what a claim of asset would pay right now. Nothing is written.
func (s *Service) PendingRewards(ctx context.Context, collection, asset types.Identity) (uint64, error) {
	var amount uint64
	// read registry and position from one snapshot
	err := s.execute(ctx, "pending_rewards", collection, func(ctx context.Context) error {
		now := s.clock.Now()
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		position, err := s.GetPosition(ctx, collection, asset)
		if err != nil {
			return err
		}
		amount, err = accrual.Preview(position, registry, now)
		return err
	})
	return amount, err
}
