package db

import (
	"context"
	"errors"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (db *Database) SaveNewCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	_, err := db.collection(model.CollectionRegistryCollection).InsertOne(ctx, registry)
	if err != nil {
		return asDuplicateKeyError(err, registry.ID.String(), "collection already exists")
	}
	return nil
}

func (db *Database) GetCollectionRegistry(ctx context.Context, id types.Identity) (*model.CollectionRegistry, error) {
	var registry model.CollectionRegistry
	err := db.collection(model.CollectionRegistryCollection).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&registry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id.String(),
				Message: "collection not found",
			}
		}
		return nil, err
	}

	return &registry, nil
}

func (db *Database) UpdateCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	res, err := db.collection(model.CollectionRegistryCollection).
		ReplaceOne(ctx, bson.M{"_id": registry.ID}, registry)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     registry.ID.String(),
			Message: "collection not found",
		}
	}

	return nil
}

func (db *Database) ListCollectionRegistries(ctx context.Context) ([]*model.CollectionRegistry, error) {
	cursor, err := db.collection(model.CollectionRegistryCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var registries []*model.CollectionRegistry
	if err = cursor.All(ctx, &registries); err != nil {
		return nil, err
	}

	return registries, nil
}
