package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// CommitmentRecord is the live commitment slot of a principal within a
// namespace. A record is immutable except for whole-record replace (a new
// commit) or whole-record delete (consumption or expiry).
type CommitmentRecord struct {
	Principal     Principal
	Namespace     []byte
	Commitment    Commitment
	OrderingValue uint64
	ExtraData     []byte
	// Value is an attached value transfer carried through the acceptance
	// as-is; the engine never interprets it
	Value     sdkmath.Int
	CreatedAt time.Time
}

// CommitEvent is the notification emitted exactly once per accepted commit
type CommitEvent struct {
	OrderingValue uint64
	Principal     Principal
	Namespace     []byte
	Commitment    Commitment
	ExtraData     []byte
}
