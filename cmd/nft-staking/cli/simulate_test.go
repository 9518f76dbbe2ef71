package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/types"
	"github.com/babylonlabs-io/nft-staking/testutil"
)

func TestSimulate(t *testing.T) {
	cmd := SimulateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--stakers", "5", "--rounds", "15", "--max-step", "17", "--seed", "42"})

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "seed: 42")
	assert.Contains(t, out.String(), "total staked: 0")
}

func TestWriteReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, 7, 10, 990, 0))
	assert.Contains(t, out.String(), "emitted: 1000")
	assert.Contains(t, out.String(), "lost to truncation and idle time: 10")

	out.Reset()
	err := writeReport(&out, 7, 10, 1001, 0)
	require.ErrorIs(t, err, types.ErrInvariantViolation)
	assert.Empty(t, out.String())
}

func TestWriteValue(t *testing.T) {
	registry := testutil.RandomCollectionRegistry(t)

	var jsonOut bytes.Buffer
	require.NoError(t, writeValue(&jsonOut, registry, false))
	// identities are printed in their text form
	assert.Contains(t, jsonOut.String(), registry.ID.String())

	var rawOut bytes.Buffer
	require.NoError(t, writeValue(&rawOut, registry, true))
	assert.Contains(t, rawOut.String(), "model.CollectionRegistry")
	assert.Contains(t, rawOut.String(), registry.Name)
}
