package db

import (
	"context"
	"errors"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) SaveNewAsset(ctx context.Context, asset *model.AssetDocument) error {
	_, err := db.collection(model.AssetCollection).InsertOne(ctx, asset)
	if err != nil {
		return asDuplicateKeyError(err, asset.ID.String(), "asset already exists")
	}
	return nil
}

func (db *Database) GetAsset(ctx context.Context, id types.Identity) (*model.AssetDocument, error) {
	var asset model.AssetDocument
	err := db.collection(model.AssetCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id.String(),
				Message: "asset not found",
			}
		}
		return nil, err
	}
	return &asset, nil
}

func (db *Database) TransferAsset(ctx context.Context, id, from, to types.Identity) error {
	filter := bson.M{
		"_id":    id,
		"holder": from,
	}
	update := bson.M{"$set": bson.M{"holder": to}}

	res, err := db.collection(model.AssetCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     id.String(),
			Message: "asset not found or not held by sender",
		}
	}

	return nil
}

func (db *Database) AddRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity, amount uint64) error {
	filter := bson.M{
		"reward_asset_id": rewardAssetID,
		"holder":          holder,
	}
	update := bson.M{"$inc": bson.M{"amount": amount}}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.RewardBalanceCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity) (uint64, error) {
	filter := bson.M{
		"reward_asset_id": rewardAssetID,
		"holder":          holder,
	}

	var balance model.RewardBalanceDocument
	err := db.collection(model.RewardBalanceCollection).FindOne(ctx, filter).Decode(&balance)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// If no document exists, return 0
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Amount, nil
}
