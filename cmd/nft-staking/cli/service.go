package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	dbmodel "github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/queue"
	"github.com/babylonlabs-io/nft-staking/internal/services"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// newService wires the service described by cfg. The returned function releases its resources.
func newService(ctx context.Context, cfg *config.Config) (*services.Service, func(), error) {
	var (
		dbClient   db.DbInterface
		disconnect = func() {}
	)
	if cfg.Db.InMemory {
		log.Ctx(ctx).Warn().Msg("Using in-memory database, state is lost on exit")
		dbClient = db.NewMemoryDatabase()
	} else {
		if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
			return nil, nil, fmt.Errorf("error while setting up staking db model: %w", err)
		}

		mongoClient, err := db.New(ctx, cfg.Db)
		if err != nil {
			return nil, nil, fmt.Errorf("error while creating db client: %w", err)
		}
		dbClient = mongoClient
		disconnect = func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("Failed to disconnect from mongo")
			}
		}
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	qm, err := queue.NewQueueManager(ctx, &cfg.Queue)
	if err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("error while creating queue manager: %w", err)
	}

	book := ledger.New(dbClient)
	service := services.NewService(cfg, dbClient, book, book, qm, services.SystemClock{})

	cleanup := func() {
		qm.Shutdown()
		disconnect()
	}
	return service, cleanup, nil
}

var errInMemoryCommand = errors.New(
	"in-memory db is only available to start-server and simulate, one-shot commands need a persistent db")

// newCommandService is newService for commands that run a single operation and
// exit. Their state must outlive the process.
func newCommandService(ctx context.Context, cfg *config.Config) (*services.Service, func(), error) {
	if cfg.Db.InMemory {
		return nil, nil, errInMemoryCommand
	}
	return newService(ctx, cfg)
}

func identityFlag(cmd *cobra.Command, name string) (types.Identity, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return types.Identity{}, err
	}
	id, err := types.ParseIdentity(value)
	if err != nil {
		return types.Identity{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return id, nil
}

func addIdentityFlag(cmd *cobra.Command, name, usage string) {
	cmd.Flags().String(name, "", usage)
	_ = cmd.MarkFlagRequired(name)
}
