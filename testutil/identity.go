package testutil

import (
	"crypto/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/nft-staking/internal/db/model"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// RandomIdentity returns a random identity
func RandomIdentity(t testing.TB) types.Identity {
	var id types.Identity
	_, err := rand.Read(id[:])
	require.NoError(t, err)
	return id
}

// RandomCollectionRegistry returns a fresh registry with random authority and name
func RandomCollectionRegistry(t testing.TB) *model.CollectionRegistry {
	name := gofakeit.Word() + "-" + gofakeit.Word()
	maxSupply := uint64(gofakeit.Number(10, 10_000))
	now := int64(gofakeit.Number(1_600_000_000, 1_900_000_000))

	return model.NewCollectionRegistry(RandomIdentity(t), name, maxSupply, now)
}

// RandomName returns n random letters, used to keep docker container names unique
func RandomName(n uint) string {
	return gofakeit.LetterN(n)
}
