package services

import (
	"sync"

	"github.com/babylonlabs-io/nft-staking/internal/types"
)

type keyedLock struct {
	sync.Mutex
	// holders and waiters
	refs int
}

// keyedMutex holds one mutex per key for as long as somebody holds or waits
// for it, so unknown keys do not accumulate.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[types.Identity]*keyedLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[types.Identity]*keyedLock)}
}

// Lock locks key and returns the matching unlock function.
func (k *keyedMutex) Lock(key types.Identity) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
