// Package accrual implements the collection reward accumulator.
//
// Every staked asset is one share. Between two updates the collection emits
// RewardRatePerSecond reward units per second, split equally between the
// shares staked at that time:
//
//	delta = floor(elapsed * RewardRatePerSecond / total_staked)
//
// A position earns accumulated - paid, where paid is the accumulator value
// at its last settlement. Time that passes while nothing is staked is not
// banked for later stakers. The remainder of the division is not carried to
// the next update either; both are reported as Step.Discarded.
package accrual

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// RewardRatePerSecond is the number of reward units the collection emits per second.
const RewardRatePerSecond uint64 = 100

// Step describes one accumulator advance.
type Step struct {
	Elapsed uint64
	// accumulator increase per share
	Delta uint64
	// reward units emitted during the step that nobody received, either because
	// nothing was staked or because of truncation
	Discarded uint64
}

// Advance brings the accumulator of registry up to now. Calling it twice with
// the same now is the same as calling it once. On error registry is untouched.
func Advance(registry *model.CollectionRegistry, now int64) (Step, error) {
	if now < registry.LastUpdateTime {
		return Step{}, fmt.Errorf("%w: now %d, last update %d",
			types.ErrClockWentBackwards, now, registry.LastUpdateTime)
	}

	elapsed := uint64(now - registry.LastUpdateTime)
	step, err := computeStep(elapsed, registry.TotalStaked)
	if err != nil {
		return Step{}, err
	}

	accumulated, err := checkedAdd(registry.RewardsPerShareAccumulated, step.Delta)
	if err != nil {
		return Step{}, fmt.Errorf("failed to advance accumulator: %w", err)
	}

	registry.RewardsPerShareAccumulated = accumulated
	registry.LastUpdateTime = now
	return step, nil
}

func computeStep(elapsed, totalStaked uint64) (Step, error) {
	emitted := sdkmath.NewUint(elapsed).MulUint64(RewardRatePerSecond)
	if totalStaked == 0 {
		return Step{
			Elapsed:   elapsed,
			Discarded: clampUint64(emitted),
		}, nil
	}

	delta := emitted.QuoUint64(totalStaked)
	if !isUint64(delta) {
		return Step{}, fmt.Errorf("%w: reward delta for %d seconds over %d shares",
			types.ErrArithmeticOverflow, elapsed, totalStaked)
	}

	distributed := delta.MulUint64(totalStaked)
	return Step{
		Elapsed:   elapsed,
		Delta:     delta.Uint64(),
		Discarded: clampUint64(emitted.Sub(distributed)),
	}, nil
}

// Settle returns everything position has earned but not yet received, given a
// registry already advanced to the current instant. It never mutates its inputs:
// committing the snapshot is up to the caller (see model.StakePosition.MarkSettled).
func Settle(position *model.StakePosition, registry *model.CollectionRegistry) (uint64, error) {
	if position.RewardsPerSharePaid > registry.RewardsPerShareAccumulated {
		return 0, fmt.Errorf("%w: position %s paid %d ahead of accumulator %d",
			types.ErrInvariantViolation, position.ID, position.RewardsPerSharePaid,
			registry.RewardsPerShareAccumulated)
	}

	newlyEarned := registry.RewardsPerShareAccumulated - position.RewardsPerSharePaid
	amount, err := checkedAdd(position.PendingRewards, newlyEarned)
	if err != nil {
		return 0, fmt.Errorf("failed to settle position %s: %w", position.ID, err)
	}
	return amount, nil
}

// Preview returns what Settle would return at now without touching registry.
func Preview(position *model.StakePosition, registry *model.CollectionRegistry, now int64) (uint64, error) {
	advanced := registry.Clone()
	if _, err := Advance(advanced, now); err != nil {
		return 0, err
	}
	return Settle(position, advanced)
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := sdkmath.NewUint(a).AddUint64(b)
	if !isUint64(sum) {
		return 0, fmt.Errorf("%w: %d + %d", types.ErrArithmeticOverflow, a, b)
	}
	return sum.Uint64(), nil
}

func clampUint64(v sdkmath.Uint) uint64 {
	if !isUint64(v) {
		return ^uint64(0)
	}
	return v.Uint64()
}

func isUint64(v sdkmath.Uint) bool {
	return v.BigInt().IsUint64()
}
