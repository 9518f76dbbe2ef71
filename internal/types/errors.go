package types

import "errors"

// Staking errors. Every failing operation returns one of these (possibly wrapped)
// and commits nothing.
var (
	ErrMaxSupplyReached       = errors.New("maximum supply reached")
	ErrNotAuthorized          = errors.New("caller is not the collection authority")
	ErrNotOwner               = errors.New("caller does not own the stake position")
	ErrPositionNotFound       = errors.New("stake position not found")
	ErrPositionExists         = errors.New("stake position already exists")
	ErrCollectionNotFound     = errors.New("collection not found")
	ErrCollectionExists       = errors.New("collection already exists")
	ErrAssetNotInCollection   = errors.New("asset was not issued by the collection")
	ErrCustodyTransferFailed  = errors.New("custody transfer failed")
	ErrMintFailed             = errors.New("reward mint failed")
	ErrClockWentBackwards     = errors.New("current time is before last update time")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
	ErrInvariantViolation     = errors.New("ledger invariant violated")
	ErrInvalidMaxSupply       = errors.New("max supply must be positive")
	ErrInsufficientAssetFunds = errors.New("asset not held by sender")
)

// CollaboratorError wraps an error reported by a custody or mint collaborator
// so both the staking kind and the original cause match errors.Is.
type CollaboratorError struct {
	Kind  error
	Cause error
}

func NewCollaboratorError(kind, cause error) *CollaboratorError {
	return &CollaboratorError{Kind: kind, Cause: cause}
}

func (e *CollaboratorError) Error() string {
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}
