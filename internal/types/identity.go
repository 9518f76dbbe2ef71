package types

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// IdentityPrefix is the bech32 human readable part of every identity.
const IdentityPrefix = "nft"

const IdentitySize = chainhash.HashSize

// Identity is a 32 byte account, asset or collection identifier.
type Identity [IdentitySize]byte

var ZeroIdentity Identity

func (id Identity) String() string {
	s, err := bech32.EncodeFromBase256(IdentityPrefix, id[:])
	if err != nil {
		// 32 bytes with a valid prefix always encode
		panic(err)
	}
	return s
}

func (id Identity) IsZero() bool {
	return id == ZeroIdentity
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIdentity decodes a bech32 identity string.
func ParseIdentity(s string) (Identity, error) {
	hrp, data, err := bech32.DecodeToBase256(s)
	if err != nil {
		return ZeroIdentity, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	if hrp != IdentityPrefix {
		return ZeroIdentity, fmt.Errorf("invalid identity prefix: expected %s, got %s", IdentityPrefix, hrp)
	}
	if len(data) != IdentitySize {
		return ZeroIdentity, fmt.Errorf("invalid identity length: expected %d bytes, got %d", IdentitySize, len(data))
	}

	var id Identity
	copy(id[:], data)
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error. Only for tests and constants.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Seeds used for identity derivation
const (
	SeedCollection = "collection"
	SeedRewardMint = "reward_mint"
	SeedAsset      = "asset"
	SeedStake      = "stake"
	SeedVault      = "vault"
	SeedSigner     = "signer"
	SeedIssuer     = "issuer"
)

// derive hashes the seed and the parts into a new identity.
// Every part is length prefixed so different splits never collide.
func derive(seed string, parts ...[]byte) Identity {
	buf := make([]byte, 0, 64)
	buf = appendPart(buf, []byte(seed))
	for _, p := range parts {
		buf = appendPart(buf, p)
	}
	return Identity(chainhash.DoubleHashH(buf))
}

func appendPart(buf, part []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(part)))
	return append(buf, part...)
}

// DeriveCollectionID returns the identity of the collection created by authority under name.
func DeriveCollectionID(authority Identity, name string) Identity {
	return derive(SeedCollection, authority[:], []byte(name))
}

// DeriveRewardAssetID returns the identity of the fungible reward asset of a collection.
func DeriveRewardAssetID(collection Identity) Identity {
	return derive(SeedRewardMint, collection[:])
}

// DeriveAssetID returns the identity of the n-th asset issued by a collection (n starts at 1).
func DeriveAssetID(collection Identity, n uint64) Identity {
	return derive(SeedAsset, collection[:], binary.BigEndian.AppendUint64(nil, n))
}

// DerivePositionID returns the identity of the stake position of owner for asset.
func DerivePositionID(owner, asset Identity) Identity {
	return derive(SeedStake, owner[:], asset[:])
}

// DeriveVaultID returns the custody identity that holds asset while it is staked.
func DeriveVaultID(asset Identity) Identity {
	return derive(SeedVault, asset[:])
}
