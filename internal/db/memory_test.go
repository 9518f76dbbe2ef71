package db_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestMemoryDatabase_CollectionRegistry(t *testing.T) {
	ctx := t.Context()
	memDB := db.NewMemoryDatabase()

	t.Run("not found", func(t *testing.T) {
		doc, err := memDB.GetCollectionRegistry(ctx, testutil.RandomIdentity(t))
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)

		err = memDB.UpdateCollectionRegistry(ctx, testutil.RandomCollectionRegistry(t))
		assert.True(t, db.IsNotFoundError(err))
	})
	t.Run("save and update", func(t *testing.T) {
		registry := testutil.RandomCollectionRegistry(t)
		require.NoError(t, memDB.SaveNewCollectionRegistry(ctx, registry))

		err := memDB.SaveNewCollectionRegistry(ctx, registry)
		assert.True(t, db.IsDuplicateKeyError(err))

		registry.TotalStaked = 3
		registry.CurrentSupply = 3
		require.NoError(t, memDB.UpdateCollectionRegistry(ctx, registry))

		found, err := memDB.GetCollectionRegistry(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, registry, found)

		// returned documents are copies
		found.TotalStaked = 100
		again, err := memDB.GetCollectionRegistry(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), again.TotalStaked)
	})
	t.Run("list", func(t *testing.T) {
		registries, err := memDB.ListCollectionRegistries(ctx)
		require.NoError(t, err)
		assert.Len(t, registries, 1)
	})
}

func TestMemoryDatabase_StakePosition(t *testing.T) {
	ctx := t.Context()
	memDB := db.NewMemoryDatabase()

	registry := testutil.RandomCollectionRegistry(t)
	owner := testutil.RandomIdentity(t)
	asset := testutil.RandomIdentity(t)
	position := model.NewStakePosition(registry, owner, asset, registry.LastUpdateTime)

	require.NoError(t, memDB.SaveNewStakePosition(ctx, position))

	t.Run("duplicate id", func(t *testing.T) {
		err := memDB.SaveNewStakePosition(ctx, position)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
	t.Run("duplicate asset with another owner", func(t *testing.T) {
		other := model.NewStakePosition(registry, testutil.RandomIdentity(t), asset, registry.LastUpdateTime)
		err := memDB.SaveNewStakePosition(ctx, other)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
	t.Run("get by asset", func(t *testing.T) {
		found, err := memDB.GetStakePositionByAsset(ctx, registry.ID, asset)
		require.NoError(t, err)
		assert.Equal(t, position, found)

		_, err = memDB.GetStakePositionByAsset(ctx, testutil.RandomIdentity(t), asset)
		assert.True(t, db.IsNotFoundError(err))
	})
	t.Run("update", func(t *testing.T) {
		updated := position.Clone()
		updated.MarkSettled(500)
		// only settlement fields are written
		updated.StakeTime = 1
		require.NoError(t, memDB.UpdateStakePosition(ctx, updated))

		found, err := memDB.GetStakePositionByAsset(ctx, registry.ID, asset)
		require.NoError(t, err)
		assert.Equal(t, uint64(500), found.RewardsPerSharePaid)
		assert.Equal(t, position.StakeTime, found.StakeTime)
	})
	t.Run("count and delete", func(t *testing.T) {
		count, err := memDB.CountStakePositions(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)

		require.NoError(t, memDB.DeleteStakePosition(ctx, position.ID))
		err = memDB.DeleteStakePosition(ctx, position.ID)
		assert.True(t, db.IsNotFoundError(err))

		_, err = memDB.GetStakePositionByAsset(ctx, registry.ID, asset)
		assert.True(t, db.IsNotFoundError(err))

		// the asset can be staked again
		require.NoError(t, memDB.SaveNewStakePosition(ctx, position))
	})
}

func TestMemoryDatabase_Ledger(t *testing.T) {
	ctx := t.Context()
	memDB := db.NewMemoryDatabase()

	holder := testutil.RandomIdentity(t)
	receiver := testutil.RandomIdentity(t)
	asset := &model.AssetDocument{
		ID:           testutil.RandomIdentity(t),
		CollectionID: testutil.RandomIdentity(t),
		Holder:       holder,
	}
	require.NoError(t, memDB.SaveNewAsset(ctx, asset))
	assert.True(t, db.IsDuplicateKeyError(memDB.SaveNewAsset(ctx, asset)))

	t.Run("transfer", func(t *testing.T) {
		err := memDB.TransferAsset(ctx, asset.ID, receiver, holder)
		assert.True(t, db.IsNotFoundError(err), "receiver does not hold the asset yet")

		require.NoError(t, memDB.TransferAsset(ctx, asset.ID, holder, receiver))
		found, err := memDB.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, receiver, found.Holder)
	})
	t.Run("reward balance", func(t *testing.T) {
		rewardAsset := testutil.RandomIdentity(t)

		balance, err := memDB.GetRewardBalance(ctx, rewardAsset, holder)
		require.NoError(t, err)
		assert.Zero(t, balance)

		require.NoError(t, memDB.AddRewardBalance(ctx, rewardAsset, holder, 10))
		require.NoError(t, memDB.AddRewardBalance(ctx, rewardAsset, holder, 5))
		balance, err = memDB.GetRewardBalance(ctx, rewardAsset, holder)
		require.NoError(t, err)
		assert.Equal(t, uint64(15), balance)

		err = memDB.AddRewardBalance(ctx, rewardAsset, holder, math.MaxUint64)
		require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	})
}

func TestMemoryDatabase_WithTransaction(t *testing.T) {
	ctx := t.Context()
	memDB := db.NewMemoryDatabase()

	registry := testutil.RandomCollectionRegistry(t)
	require.NoError(t, memDB.SaveNewCollectionRegistry(ctx, registry))

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := memDB.WithTransaction(ctx, func(ctx context.Context) error {
			updated := registry.Clone()
			updated.RewardsPerShareAccumulated = 99
			require.NoError(t, memDB.UpdateCollectionRegistry(ctx, updated))

			// reads inside the transaction see its own writes
			found, err := memDB.GetCollectionRegistry(ctx, registry.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(99), found.RewardsPerShareAccumulated)

			require.NoError(t, memDB.AddRewardBalance(ctx, registry.RewardAssetID, registry.Authority, 7))
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := memDB.GetCollectionRegistry(ctx, registry.ID)
		require.NoError(t, err)
		assert.Zero(t, found.RewardsPerShareAccumulated)

		balance, err := memDB.GetRewardBalance(ctx, registry.RewardAssetID, registry.Authority)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})
	t.Run("commit", func(t *testing.T) {
		err := memDB.WithTransaction(ctx, func(ctx context.Context) error {
			updated := registry.Clone()
			updated.RewardsPerShareAccumulated = 42
			if err := memDB.UpdateCollectionRegistry(ctx, updated); err != nil {
				return err
			}
			// nested transactions join the outer one
			return memDB.WithTransaction(ctx, func(ctx context.Context) error {
				return memDB.AddRewardBalance(ctx, registry.RewardAssetID, registry.Authority, 7)
			})
		})
		require.NoError(t, err)

		found, err := memDB.GetCollectionRegistry(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), found.RewardsPerShareAccumulated)

		balance, err := memDB.GetRewardBalance(ctx, registry.RewardAssetID, registry.Authority)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), balance)
	})
}
