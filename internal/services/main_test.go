package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/db"
	"github.com/babylonlabs-io/nft-staking/internal/ledger"
	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/tests/mocks"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

const genesis int64 = 1_700_000_000

type fakeClock struct {
	now atomic.Int64
}

func newFakeClock(now int64) *fakeClock {
	c := &fakeClock{}
	c.now.Store(now)
	return c
}

func (c *fakeClock) Now() int64 {
	return c.now.Load()
}

// At sets the clock to seconds after genesis.
func (c *fakeClock) At(seconds int64) {
	c.now.Store(genesis + seconds)
}

// pausingClock is a fakeClock whose next read can be held: the value is taken
// first, then the read blocks until released.
type pausingClock struct {
	*fakeClock
	mu      sync.Mutex
	held    chan struct{}
	release chan struct{}
}

// PauseNextRead arms the clock. held is closed once a read is blocked.
func (c *pausingClock) PauseNextRead() (held <-chan struct{}, release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = make(chan struct{})
	c.release = make(chan struct{})
	return c.held, sync.OnceFunc(func() { close(c.release) })
}

func (c *pausingClock) Now() int64 {
	now := c.fakeClock.Now()

	c.mu.Lock()
	held, release := c.held, c.release
	c.held, c.release = nil, nil
	c.mu.Unlock()

	if held != nil {
		close(held)
		<-release
	}
	return now
}

type testEnv struct {
	svc        *Service
	db         *db.MemoryDatabase
	book       *ledger.Ledger
	clock      *fakeClock
	authority  types.Identity
	collection types.Identity
}

func testConfig() *config.Config {
	return &config.Config{
		Poller: config.PollerConfig{StatsPollingInterval: time.Minute},
	}
}

func quietPublisher(t *testing.T) *mocks.PublisherInterface {
	publisher := mocks.NewPublisherInterface(t)
	publisher.On("PublishStakingEvent", mock.Anything, mock.Anything).Return(nil).Maybe()
	return publisher
}

// newTestEnv creates a service over an in-memory database and a collection
// initialized at genesis.
func newTestEnv(t *testing.T, maxSupply uint64) *testEnv {
	memDB := db.NewMemoryDatabase()
	book := ledger.New(memDB)
	clock := newFakeClock(genesis)
	svc := NewService(testConfig(), memDB, book, book, quietPublisher(t), clock)

	authority := testutil.RandomIdentity(t)
	registry, err := svc.InitializeCollection(t.Context(), authority, "test collection", maxSupply)
	require.NoError(t, err)

	return &testEnv{
		svc:        svc,
		db:         memDB,
		book:       book,
		clock:      clock,
		authority:  authority,
		collection: registry.ID,
	}
}

// issueTo issues a new asset and hands it over to owner.
func (e *testEnv) issueTo(t *testing.T, owner types.Identity) types.Identity {
	ctx := t.Context()
	asset, err := e.svc.Issue(ctx, e.collection, e.authority)
	require.NoError(t, err)
	if owner != e.authority {
		err = e.book.Transfer(ctx, asset, e.authority, owner, types.SignerAuthority(e.authority))
		require.NoError(t, err)
	}
	return asset
}

func (e *testEnv) balance(t *testing.T, holder types.Identity) uint64 {
	balance, err := e.svc.RewardBalance(t.Context(), e.collection, holder)
	require.NoError(t, err)
	return balance
}
