package types

import (
	"errors"
	"fmt"
)

var ErrInvalidAuthority = errors.New("invalid authority")

// Authority is a capability proving the right to act on behalf of a derived identity.
// It carries no key material: the proof is recomputed from seed and subject.
type Authority struct {
	Seed    string
	Subject Identity
	Proof   Identity
}

// DeriveAuthority builds the authority for seed over subject.
func DeriveAuthority(seed string, subject Identity) Authority {
	return Authority{
		Seed:    seed,
		Subject: subject,
		Proof:   derive(seed, subject[:]),
	}
}

// SignerAuthority is the authority of a caller whose identity was already verified by the host.
func SignerAuthority(caller Identity) Authority {
	return DeriveAuthority(SeedSigner, caller)
}

// RewardMintAuthority is the authority the collection uses to mint its reward asset.
func RewardMintAuthority(collection Identity) Authority {
	return DeriveAuthority(SeedRewardMint, collection)
}

// VaultAuthority is the authority the collection uses to release a staked asset.
func VaultAuthority(asset Identity) Authority {
	return DeriveAuthority(SeedVault, asset)
}

// Verify checks that the proof matches seed and subject.
func (a Authority) Verify() error {
	if a.Seed == "" || a.Subject.IsZero() {
		return fmt.Errorf("%w: empty seed or subject", ErrInvalidAuthority)
	}
	expected := derive(a.Seed, a.Subject[:])
	if expected != a.Proof {
		return fmt.Errorf("%w: proof mismatch for seed %s", ErrInvalidAuthority, a.Seed)
	}
	return nil
}

// Authorizes reports whether a is a valid authority with the given seed over subject.
func (a Authority) Authorizes(seed string, subject Identity) bool {
	return a.Seed == seed && a.Subject == subject && a.Verify() == nil
}

// IssuerAuthority is the authority the collection uses to create new assets.
func IssuerAuthority(collection Identity) Authority {
	return DeriveAuthority(SeedIssuer, collection)
}
