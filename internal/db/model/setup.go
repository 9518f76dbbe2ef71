package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const namespaceExistsErrorCode = 48

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	CollectionRegistryCollection: {
		{Keys: bson.D{{Key: "authority", Value: 1}}},
	},
	StakePositionCollection: {
		// at most one open position per asset
		{Keys: bson.D{{Key: "collection_id", Value: 1}, {Key: "asset_id", Value: 1}}, Unique: true},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	},
	AssetCollection: {
		{Keys: bson.D{{Key: "collection_id", Value: 1}, {Key: "holder", Value: 1}}},
	},
	RewardBalanceCollection: {
		{Keys: bson.D{{Key: "reward_asset_id", Value: 1}, {Key: "holder", Value: 1}}, Unique: true},
	},
}

// Setup creates collections and indexes. It is safe to run against an initialized database.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOpts := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOpts.SetAuth(credential)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to disconnect mongo client after setup")
		}
	}()

	database := client.Database(cfg.DbName)

	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for collection, idxs := range collections {
		if err := createCollection(ctx, database, collection); err != nil {
			return err
		}
		for _, idx := range idxs {
			if err := createIndex(ctx, database, collection, idx); err != nil {
				return err
			}
		}
	}

	log.Ctx(ctx).Info().Msg("Collections and indexes created successfully")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) error {
	// collections have to exist up front, they cannot be created implicitly inside a transaction
	err := database.CreateCollection(ctx, collectionName)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExistsErrorCode {
			log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Collection already exists")
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
	}

	log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Collection created")
	return nil
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) error {
	if len(idx.Keys) == 0 {
		return fmt.Errorf("no index keys provided for collection %s", collectionName)
	}

	index := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collectionName, err)
	}

	log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("Index created")
	return nil
}
