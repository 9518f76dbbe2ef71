package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

var (
	ErrTransferNotAuthorized = errors.New("transfer not authorized")
	ErrMintNotAuthorized     = errors.New("mint not authorized")
	ErrIssueNotAuthorized    = errors.New("issue not authorized")
	ErrAssetExists           = errors.New("asset already exists")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrZeroAmount            = errors.New("mint amount must be positive")
)

// Ledger is the asset and reward balance book kept in the same database as the
// staking records. Every call joins the storage transaction carried by ctx, so
// transfers and mints commit together with the registry and positions.
type Ledger struct {
	db db.DbInterface
}

var (
	_ CustodyInterface = (*Ledger)(nil)
	_ MintInterface    = (*Ledger)(nil)
)

func New(db db.DbInterface) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Issue(
	ctx context.Context, collection, asset, to types.Identity, authorizedBy types.Authority,
) error {
	if !authorizedBy.Authorizes(types.SeedIssuer, collection) {
		return fmt.Errorf("%w: asset %s of collection %s", ErrIssueNotAuthorized, asset, collection)
	}

	err := l.db.SaveNewAsset(ctx, &model.AssetDocument{
		ID:           asset,
		CollectionID: collection,
		Holder:       to,
	})
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrAssetExists, asset)
		}
		return fmt.Errorf("failed to save asset %s: %w", asset, err)
	}

	log.Ctx(ctx).Debug().
		Stringer("asset", asset).
		Stringer("holder", to).
		Msg("Asset issued")
	return nil
}

func (l *Ledger) CollectionOf(ctx context.Context, asset types.Identity) (types.Identity, error) {
	doc, err := l.db.GetAsset(ctx, asset)
	if err != nil {
		if db.IsNotFoundError(err) {
			return types.Identity{}, fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
		}
		return types.Identity{}, fmt.Errorf("failed to get asset %s: %w", asset, err)
	}
	return doc.CollectionID, nil
}

func (l *Ledger) Transfer(
	ctx context.Context, asset, from, to types.Identity, authorizedBy types.Authority,
) error {
	if !canTransfer(asset, from, authorizedBy) {
		return fmt.Errorf("%w: asset %s from %s", ErrTransferNotAuthorized, asset, from)
	}

	if err := l.db.TransferAsset(ctx, asset, from, to); err != nil {
		if db.IsNotFoundError(err) {
			return fmt.Errorf("%w: asset %s, sender %s", types.ErrInsufficientAssetFunds, asset, from)
		}
		return fmt.Errorf("failed to transfer asset %s: %w", asset, err)
	}

	log.Ctx(ctx).Debug().
		Stringer("asset", asset).
		Stringer("from", from).
		Stringer("to", to).
		Msg("Asset transferred")
	return nil
}

// canTransfer accepts the holder's own signature, or the vault authority of
// the asset when the asset leaves its vault.
func canTransfer(asset, from types.Identity, authorizedBy types.Authority) bool {
	if authorizedBy.Authorizes(types.SeedSigner, from) {
		return true
	}
	return from == types.DeriveVaultID(asset) && authorizedBy.Authorizes(types.SeedVault, asset)
}

func (l *Ledger) Mint(
	ctx context.Context, rewardAsset types.Identity, amount uint64, to types.Identity, authorizedBy types.Authority,
) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	// the mint authority is derived from the collection, which in turn derives the reward asset
	if authorizedBy.Seed != types.SeedRewardMint ||
		types.DeriveRewardAssetID(authorizedBy.Subject) != rewardAsset ||
		authorizedBy.Verify() != nil {
		return fmt.Errorf("%w: reward asset %s", ErrMintNotAuthorized, rewardAsset)
	}

	if err := l.db.AddRewardBalance(ctx, rewardAsset, to, amount); err != nil {
		return fmt.Errorf("failed to credit %d of %s to %s: %w", amount, rewardAsset, to, err)
	}

	log.Ctx(ctx).Debug().
		Stringer("reward_asset", rewardAsset).
		Stringer("to", to).
		Uint64("amount", amount).
		Msg("Rewards minted")
	return nil
}

// Holder returns who currently holds asset.
func (l *Ledger) Holder(ctx context.Context, asset types.Identity) (types.Identity, error) {
	doc, err := l.db.GetAsset(ctx, asset)
	if err != nil {
		return types.Identity{}, err
	}
	return doc.Holder, nil
}

// Balance returns the reward balance of holder.
func (l *Ledger) Balance(ctx context.Context, rewardAsset, holder types.Identity) (uint64, error) {
	return l.db.GetRewardBalance(ctx, rewardAsset, holder)
}
