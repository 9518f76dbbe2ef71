package services

import (
	"context"
	"testing"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/accrual"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestConcurrentOperations(t *testing.T) {
	const stakers = 16
	ctx := t.Context()
	env := newTestEnv(t, stakers)

	owners := make([]types.Identity, stakers)
	assets := make([]types.Identity, stakers)
	for i := range stakers {
		owners[i] = testutil.RandomIdentity(t)
		assets[i] = env.issueTo(t, owners[i])
	}

	stakeAll := pool.New().WithErrors().WithContext(ctx)
	for i := range stakers {
		stakeAll.Go(func(ctx context.Context) error {
			_, err := env.svc.Stake(ctx, env.collection, owners[i], assets[i])
			return err
		})
	}
	require.NoError(t, stakeAll.Wait())

	env.clock.At(100)
	var minted [stakers]uint64
	mixed := pool.New().WithErrors().WithContext(ctx)
	for i := range stakers {
		mixed.Go(func(ctx context.Context) error {
			amount, err := env.svc.Claim(ctx, env.collection, owners[i], assets[i])
			if err != nil {
				return err
			}
			minted[i] += amount
			if i%2 == 0 {
				amount, err = env.svc.Unstake(ctx, env.collection, owners[i], assets[i])
				minted[i] += amount
			}
			return err
		})
	}
	require.NoError(t, mixed.Wait())

	registry, err := env.svc.GetCollection(ctx, env.collection)
	require.NoError(t, err)
	assert.Equal(t, uint64(stakers/2), registry.TotalStaked)
	open, err := env.db.CountStakePositions(ctx, env.collection)
	require.NoError(t, err)
	assert.Equal(t, registry.TotalStaked, open)
	require.NoError(t, env.svc.calculateAndUpdateStats(ctx))

	var total uint64
	for i := range stakers {
		assert.Equal(t, minted[i], env.balance(t, owners[i]))
		total += minted[i]
	}
	// all operations ran at the same instant over 16 shares
	assert.Equal(t, 100*accrual.RewardRatePerSecond, total)
}

// An operation that read the clock must not be overtaken by a later one on the
// same collection, otherwise it would find the accumulator ahead of its time.
func TestOperationsCommitInClockOrder(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t, 5)
	alice := testutil.RandomIdentity(t)
	bob := testutil.RandomIdentity(t)
	aliceAsset := env.issueTo(t, alice)
	bobAsset := env.issueTo(t, bob)

	clock := &pausingClock{fakeClock: env.clock}
	svc := NewService(testConfig(), env.db, env.book, env.book, quietPublisher(t), clock)

	env.clock.At(4)
	held, release := clock.PauseNextRead()
	defer release()

	aliceDone := make(chan error, 1)
	go func() {
		_, err := svc.Stake(ctx, env.collection, alice, aliceAsset)
		aliceDone <- err
	}()
	<-held

	env.clock.At(5)
	bobDone := make(chan error, 1)
	go func() {
		_, err := svc.Stake(ctx, env.collection, bob, bobAsset)
		bobDone <- err
	}()

	// bob waits for the collection while alice holds her timestamp
	select {
	case err := <-bobDone:
		t.Fatalf("stake at a later time committed first: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	release()
	require.NoError(t, <-aliceDone)
	require.NoError(t, <-bobDone)

	registry, err := svc.GetCollection(ctx, env.collection)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), registry.TotalStaked)
	assert.Equal(t, genesis+5, registry.LastUpdateTime)
	// one share for one second
	assert.Equal(t, accrual.RewardRatePerSecond, registry.RewardsPerShareAccumulated)

	position, err := svc.GetPosition(ctx, env.collection, aliceAsset)
	require.NoError(t, err)
	assert.Equal(t, genesis+4, position.StakeTime)
}
