package cli

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/nft-staking/internal/accrual"
	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/observability/tracing"
	"github.com/babylonlabs-io/nft-staking/internal/queue"
	"github.com/babylonlabs-io/nft-staking/internal/services"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

type simulatedClock struct {
	now atomic.Int64
}

func (c *simulatedClock) Now() int64 {
	return c.now.Load()
}

func SimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs a concurrent staking workload on an in-memory ledger and checks reward conservation",
		Args:  cobra.ExactArgs(0),
		RunE:  simulate,
	}

	cmd.Flags().Int("stakers", 8, "number of stakers, each owning one asset")
	cmd.Flags().Int("rounds", 20, "number of rounds")
	cmd.Flags().Int64("max-step", 30, "maximum number of seconds between rounds")
	cmd.Flags().Uint64("seed", 0, "random seed, 0 picks one")

	return cmd
}

type simulation struct {
	svc        *services.Service
	book       *ledger.Ledger
	clock      *simulatedClock
	collection types.Identity
	owners     []types.Identity
	assets     []types.Identity
	staked     []bool
	minted     []uint64
}

func simulate(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	stakers, _ := cmd.Flags().GetInt("stakers")
	rounds, _ := cmd.Flags().GetInt("rounds")
	maxStep, _ := cmd.Flags().GetInt64("max-step")
	seed, _ := cmd.Flags().GetUint64("seed")
	if stakers <= 0 || rounds <= 0 || maxStep <= 0 {
		return fmt.Errorf("stakers, rounds and max-step must be positive")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var chachaSeed [32]byte
	binary.LittleEndian.PutUint64(chachaSeed[:], seed)
	source := rand.NewChaCha8(chachaSeed)
	rng := rand.New(source)

	sim, err := newSimulation(ctx, source, stakers)
	if err != nil {
		return err
	}
	start := sim.clock.Now()

	for round := range rounds {
		sim.clock.now.Add(1 + rng.Int64N(maxStep))
		// a quarter of the stakers leave each round and come back the next one
		leaving := make([]bool, stakers)
		for i := range leaving {
			leaving[i] = rng.IntN(4) == 0
		}
		if err := sim.round(ctx, leaving); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
	}

	sim.clock.now.Add(1 + rng.Int64N(maxStep))
	everybody := make([]bool, stakers)
	for i := range everybody {
		everybody[i] = true
	}
	if err := sim.round(ctx, everybody); err != nil {
		return fmt.Errorf("final round: %w", err)
	}

	return sim.report(ctx, cmd, seed, start)
}

func newSimulation(ctx context.Context, source *rand.ChaCha8, stakers int) (*simulation, error) {
	memDB := db.NewMemoryDatabase()
	book := ledger.New(memDB)
	qm, err := queue.NewQueueManager(ctx, &config.QueueConfig{})
	if err != nil {
		return nil, err
	}
	clock := &simulatedClock{}
	clock.now.Store(time.Now().Unix())
	svc := services.NewService(&config.Config{}, memDB, book, book, qm, clock)

	randomIdentity := func() types.Identity {
		var id types.Identity
		_, _ = source.Read(id[:])
		return id
	}

	authority := randomIdentity()
	registry, err := svc.InitializeCollection(ctx, authority, "simulation", uint64(stakers))
	if err != nil {
		return nil, err
	}

	sim := &simulation{
		svc:        svc,
		book:       book,
		clock:      clock,
		collection: registry.ID,
		owners:     make([]types.Identity, stakers),
		assets:     make([]types.Identity, stakers),
		staked:     make([]bool, stakers),
		minted:     make([]uint64, stakers),
	}
	for i := range stakers {
		sim.owners[i] = randomIdentity()
		asset, err := svc.Issue(ctx, registry.ID, authority)
		if err != nil {
			return nil, err
		}
		if err := book.Transfer(ctx, asset, authority, sim.owners[i], types.SignerAuthority(authority)); err != nil {
			return nil, err
		}
		sim.assets[i] = asset
	}
	return sim, nil
}

// round runs one operation per staker concurrently: stake when out, unstake
// when leaving, claim otherwise.
func (s *simulation) round(ctx context.Context, leaving []bool) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for i := range s.owners {
		p.Go(func(ctx context.Context) error {
			owner, asset := s.owners[i], s.assets[i]
			switch {
			case !s.staked[i] && !leaving[i]:
				if _, err := s.svc.Stake(ctx, s.collection, owner, asset); err != nil {
					return err
				}
				s.staked[i] = true
			case s.staked[i] && leaving[i]:
				amount, err := s.svc.Unstake(ctx, s.collection, owner, asset)
				if err != nil {
					return err
				}
				s.minted[i] += amount
				s.staked[i] = false
			case s.staked[i]:
				amount, err := s.svc.Claim(ctx, s.collection, owner, asset)
				if err != nil {
					return err
				}
				s.minted[i] += amount
			}
			return nil
		})
	}
	return p.Wait()
}

func (s *simulation) report(ctx context.Context, cmd *cobra.Command, seed uint64, start int64) error {
	registry, err := s.svc.GetCollection(ctx, s.collection)
	if err != nil {
		return err
	}

	var minted uint64
	for i, owner := range s.owners {
		balance, err := s.svc.RewardBalance(ctx, s.collection, owner)
		if err != nil {
			return err
		}
		if balance != s.minted[i] {
			return fmt.Errorf("%w: staker %d holds %d but was paid %d",
				types.ErrInvariantViolation, i, balance, s.minted[i])
		}
		minted += balance
	}

	elapsed := uint64(s.clock.Now() - start)
	if err := writeReport(cmd.OutOrStdout(), seed, elapsed, minted, registry.TotalStaked); err != nil {
		return err
	}

	if registry.TotalStaked != 0 {
		return fmt.Errorf("%w: %d assets still staked", types.ErrInvariantViolation, registry.TotalStaked)
	}
	for i, asset := range s.assets {
		holder, err := s.book.Holder(ctx, asset)
		if err != nil {
			return err
		}
		if holder != s.owners[i] {
			return fmt.Errorf("%w: asset %s not returned to its owner", types.ErrInvariantViolation, asset)
		}
	}

	log.Ctx(ctx).Info().Msg("Simulation finished, rewards conserved")
	return nil
}

// writeReport prints the outcome of a simulation. It fails without printing
// anything when more was minted than emitted.
func writeReport(out io.Writer, seed, elapsed, minted, totalStaked uint64) error {
	emitted := elapsed * accrual.RewardRatePerSecond
	if minted > emitted {
		return fmt.Errorf("%w: minted %d exceeds emitted %d", types.ErrInvariantViolation, minted, emitted)
	}

	fmt.Fprintln(out, "seed:", seed)
	fmt.Fprintln(out, "elapsed seconds:", elapsed)
	fmt.Fprintln(out, "emitted:", emitted)
	fmt.Fprintln(out, "minted:", minted)
	fmt.Fprintln(out, "lost to truncation and idle time:", emitted-minted)
	fmt.Fprintln(out, "total staked:", totalStaked)
	return nil
}
