package db

import (
	"context"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	// WithTransaction runs fn so that every write made with the context passed to fn
	// is committed together with the others, or not at all if fn returns an error.
	// It never retries fn. Calls nested inside fn join the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// SaveNewCollectionRegistry returns DuplicateKeyError if the collection already exists
	SaveNewCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error
	// GetCollectionRegistry returns NotFoundError if there is no such collection
	GetCollectionRegistry(ctx context.Context, id types.Identity) (*model.CollectionRegistry, error)
	UpdateCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error
	ListCollectionRegistries(ctx context.Context) ([]*model.CollectionRegistry, error)

	// SaveNewStakePosition returns DuplicateKeyError if the position or an open
	// position for the same asset already exists
	SaveNewStakePosition(ctx context.Context, position *model.StakePosition) error
	// GetStakePositionByAsset returns NotFoundError if the asset has no open position
	GetStakePositionByAsset(ctx context.Context, collectionID, assetID types.Identity) (*model.StakePosition, error)
	UpdateStakePosition(ctx context.Context, position *model.StakePosition) error
	DeleteStakePosition(ctx context.Context, id types.Identity) error
	CountStakePositions(ctx context.Context, collectionID types.Identity) (uint64, error)

	SaveNewAsset(ctx context.Context, asset *model.AssetDocument) error
	GetAsset(ctx context.Context, id types.Identity) (*model.AssetDocument, error)
	// TransferAsset returns NotFoundError if the asset does not exist or is not held by from
	TransferAsset(ctx context.Context, id, from, to types.Identity) error
	AddRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity, amount uint64) error
	GetRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity) (uint64, error)
}
