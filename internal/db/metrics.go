package db

import (
	"context"
	"time"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.run("WithTransaction", func() error {
		return d.db.WithTransaction(ctx, fn)
	})
}

func (d *DbWithMetrics) SaveNewCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	return d.run("SaveNewCollectionRegistry", func() error {
		return d.db.SaveNewCollectionRegistry(ctx, registry)
	})
}

func (d *DbWithMetrics) GetCollectionRegistry(ctx context.Context, id types.Identity) (result *model.CollectionRegistry, err error) {
	//nolint:errcheck
	d.run("GetCollectionRegistry", func() error {
		result, err = d.db.GetCollectionRegistry(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	return d.run("UpdateCollectionRegistry", func() error {
		return d.db.UpdateCollectionRegistry(ctx, registry)
	})
}

func (d *DbWithMetrics) ListCollectionRegistries(ctx context.Context) (result []*model.CollectionRegistry, err error) {
	//nolint:errcheck
	d.run("ListCollectionRegistries", func() error {
		result, err = d.db.ListCollectionRegistries(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveNewStakePosition(ctx context.Context, position *model.StakePosition) error {
	return d.run("SaveNewStakePosition", func() error {
		return d.db.SaveNewStakePosition(ctx, position)
	})
}

func (d *DbWithMetrics) GetStakePositionByAsset(ctx context.Context, collectionID, assetID types.Identity) (result *model.StakePosition, err error) {
	//nolint:errcheck
	d.run("GetStakePositionByAsset", func() error {
		result, err = d.db.GetStakePositionByAsset(ctx, collectionID, assetID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateStakePosition(ctx context.Context, position *model.StakePosition) error {
	return d.run("UpdateStakePosition", func() error {
		return d.db.UpdateStakePosition(ctx, position)
	})
}

func (d *DbWithMetrics) DeleteStakePosition(ctx context.Context, id types.Identity) error {
	return d.run("DeleteStakePosition", func() error {
		return d.db.DeleteStakePosition(ctx, id)
	})
}

func (d *DbWithMetrics) CountStakePositions(ctx context.Context, collectionID types.Identity) (result uint64, err error) {
	//nolint:errcheck
	d.run("CountStakePositions", func() error {
		result, err = d.db.CountStakePositions(ctx, collectionID)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveNewAsset(ctx context.Context, asset *model.AssetDocument) error {
	return d.run("SaveNewAsset", func() error {
		return d.db.SaveNewAsset(ctx, asset)
	})
}

func (d *DbWithMetrics) GetAsset(ctx context.Context, id types.Identity) (result *model.AssetDocument, err error) {
	//nolint:errcheck
	d.run("GetAsset", func() error {
		result, err = d.db.GetAsset(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) TransferAsset(ctx context.Context, id, from, to types.Identity) error {
	return d.run("TransferAsset", func() error {
		return d.db.TransferAsset(ctx, id, from, to)
	})
}

func (d *DbWithMetrics) AddRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity, amount uint64) error {
	return d.run("AddRewardBalance", func() error {
		return d.db.AddRewardBalance(ctx, rewardAssetID, holder, amount)
	})
}

func (d *DbWithMetrics) GetRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity) (result uint64, err error) {
	//nolint:errcheck
	d.run("GetRewardBalance", func() error {
		result, err = d.db.GetRewardBalance(ctx, rewardAssetID, holder)
		return err
	})
	return
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
