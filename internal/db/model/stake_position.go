package model

import "github.com/babylonlabs-io/nft-staking/internal/types"

const StakePositionCollection = "stake_position"

// StakePosition tracks one staked asset. It is created on stake and deleted on unstake.
type StakePosition struct {
	ID           types.Identity `bson:"_id"` // derived from owner and asset
	CollectionID types.Identity `bson:"collection_id"`
	Owner        types.Identity `bson:"owner"`
	AssetID      types.Identity `bson:"asset_id"`
	StakeTime    int64          `bson:"stake_time"`
	// accumulator value at the last settlement of this position
	RewardsPerSharePaid uint64 `bson:"rewards_per_share_paid"`
	PendingRewards      uint64 `bson:"pending_rewards"`
}

func NewStakePosition(registry *CollectionRegistry, owner, asset types.Identity, now int64) *StakePosition {
	return &StakePosition{
		ID:                  types.DerivePositionID(owner, asset),
		CollectionID:        registry.ID,
		Owner:               owner,
		AssetID:             asset,
		StakeTime:           now,
		RewardsPerSharePaid: registry.RewardsPerShareAccumulated,
	}
}

func (p *StakePosition) Clone() *StakePosition {
	cp := *p
	return &cp
}

// MarkSettled records that everything earned up to accumulated has been paid out.
func (p *StakePosition) MarkSettled(accumulated uint64) {
	p.RewardsPerSharePaid = accumulated
	p.PendingRewards = 0
}
