package store

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/fxamacker/cbor/v2"

	"github.com/commitd-io/commitd/types"
)

// storedCommitment is the on-disk representation of a commitment record
type storedCommitment struct {
	Commitment    []byte `cbor:"1,keyasint"`
	ExtraData     []byte `cbor:"2,keyasint,omitempty"`
	OrderingValue uint64 `cbor:"3,keyasint"`
	Value         string `cbor:"4,keyasint,omitempty"`
	CreatedAt     int64  `cbor:"5,keyasint"`
}

func marshalCommitment(commitment types.Commitment, extraData []byte, orderingValue uint64, value sdkmath.Int, createdAt time.Time) ([]byte, error) {
	valueStr := ""
	if !value.IsNil() && !value.IsZero() {
		valueStr = value.String()
	}

	return cbor.Marshal(&storedCommitment{
		Commitment:    commitment.Bytes(),
		ExtraData:     extraData,
		OrderingValue: orderingValue,
		Value:         valueStr,
		CreatedAt:     createdAt.UnixMilli(),
	})
}

func unmarshalCommitment(b []byte) (*storedCommitment, error) {
	var sc storedCommitment
	if err := cbor.Unmarshal(b, &sc); err != nil {
		return nil, ErrCorruptedCommitmentDB
	}

	return &sc, nil
}

func (sc *storedCommitment) toRecord(principal types.Principal, namespace []byte) (*types.CommitmentRecord, error) {
	commitment, err := types.CommitmentFromBytes(sc.Commitment)
	if err != nil {
		return nil, ErrCorruptedCommitmentDB
	}

	value := sdkmath.ZeroInt()
	if sc.Value != "" {
		parsed, ok := sdkmath.NewIntFromString(sc.Value)
		if !ok {
			return nil, fmt.Errorf("%w: invalid value amount %q", ErrCorruptedCommitmentDB, sc.Value)
		}
		value = parsed
	}

	return &types.CommitmentRecord{
		Principal:     principal,
		Namespace:     namespace,
		Commitment:    commitment,
		OrderingValue: sc.OrderingValue,
		ExtraData:     sc.ExtraData,
		Value:         value,
		CreatedAt:     time.UnixMilli(sc.CreatedAt).UTC(),
	}, nil
}
