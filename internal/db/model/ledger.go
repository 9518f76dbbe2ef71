package model

import "github.com/babylonlabs-io/nft-staking/internal/types"

// Documents used by the reference custody and mint collaborators.

const (
	AssetCollection         = "asset"
	RewardBalanceCollection = "reward_balance"
)

// AssetDocument records who currently holds a non-fungible asset.
type AssetDocument struct {
	ID           types.Identity `bson:"_id"` // Primary key
	CollectionID types.Identity `bson:"collection_id"`
	Holder       types.Identity `bson:"holder"`
}

// RewardBalanceDocument is the reward asset balance of a holder.
type RewardBalanceDocument struct {
	RewardAssetID types.Identity `bson:"reward_asset_id"`
	Holder        types.Identity `bson:"holder"`
	Amount        uint64         `bson:"amount"`
}
