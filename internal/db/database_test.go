//go:build integration

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestCollectionRegistry(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetCollectionRegistry(ctx, testutil.RandomIdentity(t))
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})
	t.Run("ok", func(t *testing.T) {
		registry := testutil.RandomCollectionRegistry(t)
		require.NoError(t, testDB.SaveNewCollectionRegistry(ctx, registry))
		assert.True(t, db.IsDuplicateKeyError(testDB.SaveNewCollectionRegistry(ctx, registry)))

		registry.CurrentSupply = 2
		registry.TotalStaked = 1
		registry.RewardsPerShareAccumulated = 1234
		registry.LastUpdateTime += 10
		require.NoError(t, testDB.UpdateCollectionRegistry(ctx, registry))

		found, err := testDB.GetCollectionRegistry(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, registry, found)

		registries, err := testDB.ListCollectionRegistries(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*model.CollectionRegistry{registry}, registries)
	})
}

func TestStakePosition(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	registry := testutil.RandomCollectionRegistry(t)
	asset := testutil.RandomIdentity(t)
	position := model.NewStakePosition(registry, testutil.RandomIdentity(t), asset, registry.LastUpdateTime)

	require.NoError(t, testDB.SaveNewStakePosition(ctx, position))

	t.Run("unique per asset", func(t *testing.T) {
		other := model.NewStakePosition(registry, testutil.RandomIdentity(t), asset, registry.LastUpdateTime)
		assert.True(t, db.IsDuplicateKeyError(testDB.SaveNewStakePosition(ctx, other)))
	})
	t.Run("settle and delete", func(t *testing.T) {
		position.MarkSettled(77)
		require.NoError(t, testDB.UpdateStakePosition(ctx, position))

		found, err := testDB.GetStakePositionByAsset(ctx, registry.ID, asset)
		require.NoError(t, err)
		assert.Equal(t, position, found)

		count, err := testDB.CountStakePositions(ctx, registry.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)

		require.NoError(t, testDB.DeleteStakePosition(ctx, position.ID))
		assert.True(t, db.IsNotFoundError(testDB.DeleteStakePosition(ctx, position.ID)))
	})
}

func TestWithTransaction(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	holder := testutil.RandomIdentity(t)
	receiver := testutil.RandomIdentity(t)
	asset := &model.AssetDocument{
		ID:           testutil.RandomIdentity(t),
		CollectionID: testutil.RandomIdentity(t),
		Holder:       holder,
	}
	require.NoError(t, testDB.SaveNewAsset(ctx, asset))

	t.Run("abort", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.WithTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, testDB.TransferAsset(ctx, asset.ID, holder, receiver))
			require.NoError(t, testDB.AddRewardBalance(ctx, asset.CollectionID, receiver, 10))
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := testDB.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, holder, found.Holder)

		balance, err := testDB.GetRewardBalance(ctx, asset.CollectionID, receiver)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})
	t.Run("commit", func(t *testing.T) {
		err := testDB.WithTransaction(ctx, func(ctx context.Context) error {
			if err := testDB.TransferAsset(ctx, asset.ID, holder, receiver); err != nil {
				return err
			}
			return testDB.AddRewardBalance(ctx, asset.CollectionID, receiver, 10)
		})
		require.NoError(t, err)

		found, err := testDB.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, receiver, found.Holder)

		balance, err := testDB.GetRewardBalance(ctx, asset.CollectionID, receiver)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), balance)
	})
}
