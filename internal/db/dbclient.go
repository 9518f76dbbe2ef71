package db

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Database struct {
	dbName string
	client *mongo.Client
}

// New connects to mongo and waits until the server answers a ping.
func New(ctx context.Context, cfg config.DbConfig) (*Database, error) {
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return nil, err
	}

	db := &Database{
		dbName: cfg.DbName,
		client: client,
	}

	err = retry.Do(
		func() error {
			return db.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(cfg.MaxConnectRetries),
		retry.Delay(cfg.ConnectRetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Err(err).
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxConnectRetries).
				Msg("mongo is not reachable yet, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ping mongo at %s: %w", cfg.Address, err)
	}

	return db, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *Database) Disconnect(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.client.Database(db.dbName).Collection(name)
}

// WithTransaction starts and commits the transaction by hand instead of using
// mongo.Session.WithTransaction, which retries the callback on transient errors.
func (db *Database) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := db.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sc); err != nil {
			if abortErr := sc.AbortTransaction(sc); abortErr != nil {
				log.Ctx(ctx).Error().Err(abortErr).Msg("Failed to abort transaction")
			}
			return err
		}

		if err := sc.CommitTransaction(sc); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}
