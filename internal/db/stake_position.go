package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (db *Database) SaveNewStakePosition(ctx context.Context, position *model.StakePosition) error {
	_, err := db.collection(model.StakePositionCollection).InsertOne(ctx, position)
	if err != nil {
		return asDuplicateKeyError(err, position.ID.String(), "stake position already exists")
	}
	return nil
}

func (db *Database) GetStakePositionByAsset(
	ctx context.Context, collectionID, assetID types.Identity,
) (*model.StakePosition, error) {
	filter := bson.M{
		"collection_id": collectionID,
		"asset_id":      assetID,
	}

	var position model.StakePosition
	err := db.collection(model.StakePositionCollection).FindOne(ctx, filter).Decode(&position)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     assetID.String(),
				Message: "stake position not found",
			}
		}
		return nil, err
	}

	return &position, nil
}

func (db *Database) UpdateStakePosition(ctx context.Context, position *model.StakePosition) error {
	filter := bson.M{"_id": position.ID}
	update := bson.M{
		"$set": bson.M{
			"rewards_per_share_paid": position.RewardsPerSharePaid,
			"pending_rewards":        position.PendingRewards,
		},
	}

	res, err := db.collection(model.StakePositionCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     position.ID.String(),
			Message: "stake position not found",
		}
	}

	return nil
}

func (db *Database) DeleteStakePosition(ctx context.Context, id types.Identity) error {
	result, err := db.collection(model.StakePositionCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete stake position %s: %w", id, err)
	}

	// Check if any document was deleted
	if result.DeletedCount == 0 {
		return &NotFoundError{
			Key:     id.String(),
			Message: "stake position not found",
		}
	}

	return nil
}

func (db *Database) CountStakePositions(ctx context.Context, collectionID types.Identity) (uint64, error) {
	count, err := db.collection(model.StakePositionCollection).
		CountDocuments(ctx, bson.M{"collection_id": collectionID})
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}
