package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestLedger_Issue(t *testing.T) {
	ctx := t.Context()
	book := ledger.New(db.NewMemoryDatabase())
	collection := testutil.RandomIdentity(t)
	holder := testutil.RandomIdentity(t)
	asset := types.DeriveAssetID(collection, 1)

	err := book.Issue(ctx, collection, asset, holder, types.SignerAuthority(holder))
	require.ErrorIs(t, err, ledger.ErrIssueNotAuthorized)

	err = book.Issue(ctx, collection, asset, holder, types.IssuerAuthority(collection))
	require.NoError(t, err)

	got, err := book.Holder(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, holder, got)

	issuedBy, err := book.CollectionOf(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, collection, issuedBy)

	_, err = book.CollectionOf(ctx, testutil.RandomIdentity(t))
	require.ErrorIs(t, err, ledger.ErrAssetNotFound)

	err = book.Issue(ctx, collection, asset, holder, types.IssuerAuthority(collection))
	require.ErrorIs(t, err, ledger.ErrAssetExists)
}

func TestLedger_Transfer(t *testing.T) {
	ctx := t.Context()
	book := ledger.New(db.NewMemoryDatabase())
	collection := testutil.RandomIdentity(t)
	owner := testutil.RandomIdentity(t)
	stranger := testutil.RandomIdentity(t)
	asset := types.DeriveAssetID(collection, 1)
	vault := types.DeriveVaultID(asset)
	require.NoError(t, book.Issue(ctx, collection, asset, owner, types.IssuerAuthority(collection)))

	t.Run("signature of somebody else", func(t *testing.T) {
		err := book.Transfer(ctx, asset, owner, stranger, types.SignerAuthority(stranger))
		require.ErrorIs(t, err, ledger.ErrTransferNotAuthorized)
	})
	t.Run("forged proof", func(t *testing.T) {
		forged := types.SignerAuthority(owner)
		forged.Proof = testutil.RandomIdentity(t)
		err := book.Transfer(ctx, asset, owner, stranger, forged)
		require.ErrorIs(t, err, ledger.ErrTransferNotAuthorized)
	})
	t.Run("sender does not hold the asset", func(t *testing.T) {
		err := book.Transfer(ctx, asset, stranger, owner, types.SignerAuthority(stranger))
		require.ErrorIs(t, err, types.ErrInsufficientAssetFunds)
	})
	t.Run("into the vault and back", func(t *testing.T) {
		require.NoError(t, book.Transfer(ctx, asset, owner, vault, types.SignerAuthority(owner)))
		holder, err := book.Holder(ctx, asset)
		require.NoError(t, err)
		assert.Equal(t, vault, holder)

		// the vault authority of another asset does not open this vault
		other := types.DeriveAssetID(collection, 2)
		err = book.Transfer(ctx, asset, vault, owner, types.VaultAuthority(other))
		require.ErrorIs(t, err, ledger.ErrTransferNotAuthorized)

		require.NoError(t, book.Transfer(ctx, asset, vault, owner, types.VaultAuthority(asset)))
		holder, err = book.Holder(ctx, asset)
		require.NoError(t, err)
		assert.Equal(t, owner, holder)
	})
	t.Run("vault authority cannot move a held asset", func(t *testing.T) {
		err := book.Transfer(ctx, asset, owner, stranger, types.VaultAuthority(asset))
		require.ErrorIs(t, err, ledger.ErrTransferNotAuthorized)
	})
}

func TestLedger_Mint(t *testing.T) {
	ctx := t.Context()
	book := ledger.New(db.NewMemoryDatabase())
	collection := testutil.RandomIdentity(t)
	rewardAsset := types.DeriveRewardAssetID(collection)
	holder := testutil.RandomIdentity(t)

	err := book.Mint(ctx, rewardAsset, 10, holder, types.RewardMintAuthority(testutil.RandomIdentity(t)))
	require.ErrorIs(t, err, ledger.ErrMintNotAuthorized)

	err = book.Mint(ctx, rewardAsset, 10, holder, types.VaultAuthority(collection))
	require.ErrorIs(t, err, ledger.ErrMintNotAuthorized)

	err = book.Mint(ctx, rewardAsset, 0, holder, types.RewardMintAuthority(collection))
	require.ErrorIs(t, err, ledger.ErrZeroAmount)

	require.NoError(t, book.Mint(ctx, rewardAsset, 10, holder, types.RewardMintAuthority(collection)))
	require.NoError(t, book.Mint(ctx, rewardAsset, 5, holder, types.RewardMintAuthority(collection)))

	balance, err := book.Balance(ctx, rewardAsset, holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), balance)
}

func TestLedger_JoinsTransaction(t *testing.T) {
	ctx := t.Context()
	memDB := db.NewMemoryDatabase()
	book := ledger.New(memDB)
	collection := testutil.RandomIdentity(t)
	rewardAsset := types.DeriveRewardAssetID(collection)
	holder := testutil.RandomIdentity(t)
	errAbort := errors.New("abort")

	err := memDB.WithTransaction(ctx, func(ctx context.Context) error {
		if err := book.Mint(ctx, rewardAsset, 7, holder, types.RewardMintAuthority(collection)); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	balance, err := book.Balance(ctx, rewardAsset, holder)
	require.NoError(t, err)
	assert.Zero(t, balance)
}
