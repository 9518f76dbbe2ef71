package model

import (
	"fmt"

	"github.com/babylonlabs-io/nft-staking/internal/types"
)

const CollectionRegistryCollection = "collection_registry"

// CollectionRegistry is the collection wide configuration and reward accumulator.
// It is created once and never deleted.
type CollectionRegistry struct {
	ID            types.Identity `bson:"_id"` // Primary key
	Name          string         `bson:"name"`
	Authority     types.Identity `bson:"authority"`
	MaxSupply     uint64         `bson:"max_supply"`
	CurrentSupply uint64         `bson:"current_supply"`
	RewardAssetID types.Identity `bson:"reward_asset_id"`
	TotalStaked   uint64         `bson:"total_staked"`
	// reward units per staked share since creation, never decreases
	RewardsPerShareAccumulated uint64 `bson:"rewards_per_share_accumulated"`
	LastUpdateTime             int64  `bson:"last_update_time"` // unix seconds
}

func NewCollectionRegistry(authority types.Identity, name string, maxSupply uint64, now int64) *CollectionRegistry {
	id := types.DeriveCollectionID(authority, name)
	return &CollectionRegistry{
		ID:             id,
		Name:           name,
		Authority:      authority,
		MaxSupply:      maxSupply,
		RewardAssetID:  types.DeriveRewardAssetID(id),
		LastUpdateTime: now,
	}
}

func (c *CollectionRegistry) Clone() *CollectionRegistry {
	cp := *c
	return &cp
}

// CheckInvariants validates the registry on its own.
func (c *CollectionRegistry) CheckInvariants() error {
	if c.CurrentSupply > c.MaxSupply {
		return fmt.Errorf("%w: current supply %d exceeds max supply %d",
			types.ErrInvariantViolation, c.CurrentSupply, c.MaxSupply)
	}
	if c.TotalStaked > c.CurrentSupply {
		return fmt.Errorf("%w: total staked %d exceeds current supply %d",
			types.ErrInvariantViolation, c.TotalStaked, c.CurrentSupply)
	}
	if c.RewardAssetID != types.DeriveRewardAssetID(c.ID) {
		return fmt.Errorf("%w: reward asset does not belong to collection %s",
			types.ErrInvariantViolation, c.ID)
	}
	return nil
}

// CheckTransition validates next against the registry it was derived from.
func (c *CollectionRegistry) CheckTransition(next *CollectionRegistry) error {
	if err := next.CheckInvariants(); err != nil {
		return err
	}
	switch {
	case next.ID != c.ID || next.Authority != c.Authority || next.RewardAssetID != c.RewardAssetID:
		return fmt.Errorf("%w: immutable collection fields changed", types.ErrInvariantViolation)
	case next.MaxSupply != c.MaxSupply:
		return fmt.Errorf("%w: max supply changed", types.ErrInvariantViolation)
	case next.CurrentSupply < c.CurrentSupply:
		return fmt.Errorf("%w: current supply decreased from %d to %d",
			types.ErrInvariantViolation, c.CurrentSupply, next.CurrentSupply)
	case next.RewardsPerShareAccumulated < c.RewardsPerShareAccumulated:
		return fmt.Errorf("%w: accumulator decreased from %d to %d",
			types.ErrInvariantViolation, c.RewardsPerShareAccumulated, next.RewardsPerShareAccumulated)
	case next.LastUpdateTime < c.LastUpdateTime:
		return fmt.Errorf("%w: last update time moved back from %d to %d",
			types.ErrInvariantViolation, c.LastUpdateTime, next.LastUpdateTime)
	}
	return nil
}
