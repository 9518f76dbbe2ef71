package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

type balanceKey struct {
	rewardAssetID types.Identity
	holder        types.Identity
}

type assetKey struct {
	collectionID types.Identity
	assetID      types.Identity
}

type memoryState struct {
	registries map[types.Identity]*model.CollectionRegistry
	positions  map[types.Identity]*model.StakePosition
	// open position id by asset
	positionsByAsset map[assetKey]types.Identity
	assets           map[types.Identity]*model.AssetDocument
	balances         map[balanceKey]uint64
}

func newMemoryState() *memoryState {
	return &memoryState{
		registries:       make(map[types.Identity]*model.CollectionRegistry),
		positions:        make(map[types.Identity]*model.StakePosition),
		positionsByAsset: make(map[assetKey]types.Identity),
		assets:           make(map[types.Identity]*model.AssetDocument),
		balances:         make(map[balanceKey]uint64),
	}
}

func (s *memoryState) clone() *memoryState {
	cp := newMemoryState()
	for k, v := range s.registries {
		cp.registries[k] = v.Clone()
	}
	for k, v := range s.positions {
		cp.positions[k] = v.Clone()
	}
	for k, v := range s.positionsByAsset {
		cp.positionsByAsset[k] = v
	}
	for k, v := range s.assets {
		asset := *v
		cp.assets[k] = &asset
	}
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	return cp
}

type memoryTxKey struct{}

// MemoryDatabase keeps everything in process memory. Transactions are fully
// serialized: WithTransaction holds the database lock until fn returns and
// works on a copy that replaces the live state only on success. fn must only
// use the context it was given, calls made with any other context block.
type MemoryDatabase struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{state: newMemoryState()}
}

// view runs f on the transaction state found in ctx, or on the live state under lock.
func (m *MemoryDatabase) view(ctx context.Context, f func(s *memoryState) error) error {
	if s, ok := ctx.Value(memoryTxKey{}).(*memoryState); ok {
		return f(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.state)
}

func (m *MemoryDatabase) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryDatabase) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryState); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.state.clone()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, staged)); err != nil {
		return err
	}

	m.state = staged
	return nil
}

func (m *MemoryDatabase) SaveNewCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	return m.view(ctx, func(s *memoryState) error {
		if _, ok := s.registries[registry.ID]; ok {
			return &DuplicateKeyError{
				Key:     registry.ID.String(),
				Message: "collection already exists",
			}
		}
		s.registries[registry.ID] = registry.Clone()
		return nil
	})
}

func (m *MemoryDatabase) GetCollectionRegistry(ctx context.Context, id types.Identity) (result *model.CollectionRegistry, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		registry, ok := s.registries[id]
		if !ok {
			return &NotFoundError{
				Key:     id.String(),
				Message: "collection not found",
			}
		}
		result = registry.Clone()
		return nil
	})
	return
}

func (m *MemoryDatabase) UpdateCollectionRegistry(ctx context.Context, registry *model.CollectionRegistry) error {
	return m.view(ctx, func(s *memoryState) error {
		if _, ok := s.registries[registry.ID]; !ok {
			return &NotFoundError{
				Key:     registry.ID.String(),
				Message: "collection not found",
			}
		}
		s.registries[registry.ID] = registry.Clone()
		return nil
	})
}

func (m *MemoryDatabase) ListCollectionRegistries(ctx context.Context) (result []*model.CollectionRegistry, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		for _, registry := range s.registries {
			result = append(result, registry.Clone())
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return
}

func (m *MemoryDatabase) SaveNewStakePosition(ctx context.Context, position *model.StakePosition) error {
	return m.view(ctx, func(s *memoryState) error {
		key := assetKey{collectionID: position.CollectionID, assetID: position.AssetID}
		_, idTaken := s.positions[position.ID]
		_, assetTaken := s.positionsByAsset[key]
		if idTaken || assetTaken {
			return &DuplicateKeyError{
				Key:     position.ID.String(),
				Message: "stake position already exists",
			}
		}

		s.positions[position.ID] = position.Clone()
		s.positionsByAsset[key] = position.ID
		return nil
	})
}

func (m *MemoryDatabase) GetStakePositionByAsset(
	ctx context.Context, collectionID, assetID types.Identity,
) (result *model.StakePosition, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		id, ok := s.positionsByAsset[assetKey{collectionID: collectionID, assetID: assetID}]
		if !ok {
			return &NotFoundError{
				Key:     assetID.String(),
				Message: "stake position not found",
			}
		}
		result = s.positions[id].Clone()
		return nil
	})
	return
}

func (m *MemoryDatabase) UpdateStakePosition(ctx context.Context, position *model.StakePosition) error {
	return m.view(ctx, func(s *memoryState) error {
		current, ok := s.positions[position.ID]
		if !ok {
			return &NotFoundError{
				Key:     position.ID.String(),
				Message: "stake position not found",
			}
		}
		// same fields as the mongo update
		current.RewardsPerSharePaid = position.RewardsPerSharePaid
		current.PendingRewards = position.PendingRewards
		return nil
	})
}

func (m *MemoryDatabase) DeleteStakePosition(ctx context.Context, id types.Identity) error {
	return m.view(ctx, func(s *memoryState) error {
		position, ok := s.positions[id]
		if !ok {
			return &NotFoundError{
				Key:     id.String(),
				Message: "stake position not found",
			}
		}
		delete(s.positionsByAsset, assetKey{collectionID: position.CollectionID, assetID: position.AssetID})
		delete(s.positions, id)
		return nil
	})
}

func (m *MemoryDatabase) CountStakePositions(ctx context.Context, collectionID types.Identity) (count uint64, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		for _, position := range s.positions {
			if position.CollectionID == collectionID {
				count++
			}
		}
		return nil
	})
	return
}

func (m *MemoryDatabase) SaveNewAsset(ctx context.Context, asset *model.AssetDocument) error {
	return m.view(ctx, func(s *memoryState) error {
		if _, ok := s.assets[asset.ID]; ok {
			return &DuplicateKeyError{
				Key:     asset.ID.String(),
				Message: "asset already exists",
			}
		}
		cp := *asset
		s.assets[asset.ID] = &cp
		return nil
	})
}

func (m *MemoryDatabase) GetAsset(ctx context.Context, id types.Identity) (result *model.AssetDocument, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		asset, ok := s.assets[id]
		if !ok {
			return &NotFoundError{
				Key:     id.String(),
				Message: "asset not found",
			}
		}
		cp := *asset
		result = &cp
		return nil
	})
	return
}

func (m *MemoryDatabase) TransferAsset(ctx context.Context, id, from, to types.Identity) error {
	return m.view(ctx, func(s *memoryState) error {
		asset, ok := s.assets[id]
		if !ok || asset.Holder != from {
			return &NotFoundError{
				Key:     id.String(),
				Message: "asset not found or not held by sender",
			}
		}
		asset.Holder = to
		return nil
	})
}

func (m *MemoryDatabase) AddRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity, amount uint64) error {
	return m.view(ctx, func(s *memoryState) error {
		key := balanceKey{rewardAssetID: rewardAssetID, holder: holder}
		current := s.balances[key]
		if current+amount < current {
			return fmt.Errorf("%w: reward balance of %s", types.ErrArithmeticOverflow, holder)
		}
		s.balances[key] = current + amount
		return nil
	})
}

func (m *MemoryDatabase) GetRewardBalance(ctx context.Context, rewardAssetID, holder types.Identity) (result uint64, err error) {
	err = m.view(ctx, func(s *memoryState) error {
		result = s.balances[balanceKey{rewardAssetID: rewardAssetID, holder: holder}]
		return nil
	})
	return
}
