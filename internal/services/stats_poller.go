package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/babylonlabs-io/nft-staking/internal/observability/metrics"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

// StartStatsPoller starts the stats polling service
func (s *Service) StartStatsPoller(ctx context.Context) *poller.Poller {
	statsPoller := poller.NewPoller(
		"stats",
		s.cfg.Poller.StatsPollingInterval,
		metrics.RecordPollerDuration("stats", s.calculateAndUpdateStats),
	)
	go statsPoller.Start(ctx)
	return statsPoller
}

// calculateAndUpdateStats exports the state of every collection and checks
// that total staked matches the number of open positions.
func (s *Service) calculateAndUpdateStats(ctx context.Context) error {
	log := log.Ctx(ctx)

	registries, err := s.db.ListCollectionRegistries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(registries) == 0 {
		log.Debug().Msg("No collections found - skipping stats update")
		return nil
	}

	var errs []error
	for _, listed := range registries {
		if err := s.checkCollectionStats(ctx, listed.ID); err != nil {
			log.Error().Err(err).Stringer("collection", listed.ID).Msg("Collection stats check failed")
			errs = append(errs, err)
		}
	}

	log.Debug().
		Int("collection_count", len(registries)).
		Msg("Updated collection stats")

	return errors.Join(errs...)
}

// checkCollectionStats reads the registry and counts its positions under the
// collection lock so that no operation commits in between.
func (s *Service) checkCollectionStats(ctx context.Context, collection types.Identity) error {
	unlock := s.locks.Lock(collection)
	defer unlock()

	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		registry, err := s.loadRegistry(ctx, collection)
		if err != nil {
			return err
		}
		metrics.RecordCollectionState(registry.ID.String(), registry.TotalStaked, registry.RewardsPerShareAccumulated)

		open, err := s.db.CountStakePositions(ctx, registry.ID)
		if err != nil {
			return fmt.Errorf("failed to count positions of %s: %w", registry.ID, err)
		}
		if open != registry.TotalStaked {
			return fmt.Errorf("%w: collection %s has %d open positions but total staked %d",
				types.ErrInvariantViolation, registry.ID, open, registry.TotalStaked)
		}
		return nil
	})
}
