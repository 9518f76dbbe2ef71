package ledger

import (
	"context"

	"github.com/babylonlabs-io/nft-staking/internal/types"
)

//go:generate mockery --name=CustodyInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_custody.go
type CustodyInterface interface {
	// Issue creates a new asset held by to.
	Issue(ctx context.Context, collection, asset, to types.Identity, authorizedBy types.Authority) error
	// CollectionOf returns the collection that issued asset.
	CollectionOf(ctx context.Context, asset types.Identity) (types.Identity, error)
	// Transfer moves one asset unit from from to to. It fails if from does not
	// hold the asset or authorizedBy lacks transfer rights.
	Transfer(ctx context.Context, asset, from, to types.Identity, authorizedBy types.Authority) error
}

//go:generate mockery --name=MintInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_mint.go
type MintInterface interface {
	// Mint creates amount new units of rewardAsset credited to to.
	Mint(ctx context.Context, rewardAsset types.Identity, amount uint64, to types.Identity, authorizedBy types.Authority) error
}
