package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("released keys are dropped", func(t *testing.T) {
		locks := newKeyedMutex()
		unlock := locks.Lock(testutil.RandomIdentity(t))
		assert.Equal(t, 1, locks.len())
		unlock()
		assert.Zero(t, locks.len())
	})
	t.Run("same key is exclusive", func(t *testing.T) {
		locks := newKeyedMutex()
		key := testutil.RandomIdentity(t)

		var (
			wg      sync.WaitGroup
			counter int
		)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock(key)
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
		assert.Zero(t, locks.len())
	})
}

func TestUnknownCollectionLeavesNoLock(t *testing.T) {
	env := newTestEnv(t, 5)

	_, err := env.svc.Claim(t.Context(), testutil.RandomIdentity(t), env.authority, testutil.RandomIdentity(t))
	require.ErrorIs(t, err, types.ErrCollectionNotFound)
	assert.Zero(t, env.svc.locks.len())
}
