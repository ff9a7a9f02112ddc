package registry

import (
	sdkmath "cosmossdk.io/math"

	"github.com/commitd-io/commitd/types"
)

// CommitRequest is the general commit-on-behalf form. Value is an attached
// value transfer passed through acceptance untouched; Proof authorizes the
// request when Caller differs from OnBehalfOf (or always, in strict mode).
type CommitRequest struct {
	Caller     types.Principal
	OnBehalfOf types.Principal
	Namespace  []byte
	Commitment types.Commitment
	ExtraData  []byte
	Value      sdkmath.Int
	Proof      []byte
}

// CommitmentRegistry accepts commitments now so that an external action can
// consume them later. Implementations must make acceptance atomic: either
// authorization, the store write, the ordering-value assignment and the
// notification all happen, or none do.
type CommitmentRegistry interface {
	// Commit records a commitment for the caller itself; equivalent in all
	// observable respects to CommitFrom with the caller as OnBehalfOf and
	// empty extra data
	Commit(caller types.Principal, commitment types.Commitment) error

	// CommitFrom records a commitment on behalf of req.OnBehalfOf and
	// returns the assigned ordering value
	CommitFrom(req CommitRequest) (uint64, error)

	// ConsumeIfMatches atomically validates candidate against the stored
	// record and deletes it on match; reveal adapters must call this before
	// any dependent effect
	ConsumeIfMatches(principal types.Principal, namespace []byte, candidate types.Commitment) (*types.CommitmentRecord, error)

	// SupportsCommitFrom reports whether the general commit-on-behalf
	// surface is available
	SupportsCommitFrom() bool

	Close() error
}
