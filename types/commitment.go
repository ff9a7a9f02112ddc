package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// CommitmentSize is the size of a commitment digest in bytes
	CommitmentSize = sha256.Size

	// PrincipalSize is the size of a principal identifier in bytes.
	// For key-holding principals this is the BIP-340 x-only public key,
	// for programmable principals an opaque 32-byte identifier.
	PrincipalSize = 32
)

var (
	// ErrEmptyCommitment the zero digest is not a valid commitment
	ErrEmptyCommitment = errors.New("commitment cannot be the zero digest")
)

// Commitment is a fixed-size cryptographic digest committing to a set of
// hidden parameters and a secret salt
type Commitment [CommitmentSize]byte

// Principal is the identity a commitment is attached to
type Principal [PrincipalSize]byte

func CommitmentFromBytes(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != CommitmentSize {
		return c, fmt.Errorf("invalid commitment length: expected %d, got %d", CommitmentSize, len(b))
	}
	copy(c[:], b)

	return c, nil
}

func CommitmentFromHex(s string) (Commitment, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Commitment{}, fmt.Errorf("invalid commitment hex: %w", err)
	}

	return CommitmentFromBytes(b)
}

func (c Commitment) Bytes() []byte {
	return c[:]
}

func (c Commitment) MarshalHex() string {
	return hex.EncodeToString(c[:])
}

// IsZero reports whether the commitment is the all-zero digest
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

func PrincipalFromBytes(b []byte) (Principal, error) {
	var p Principal
	if len(b) != PrincipalSize {
		return p, fmt.Errorf("invalid principal length: expected %d, got %d", PrincipalSize, len(b))
	}
	copy(p[:], b)

	return p, nil
}

func PrincipalFromHex(s string) (Principal, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid principal hex: %w", err)
	}

	return PrincipalFromBytes(b)
}

func (p Principal) Bytes() []byte {
	return p[:]
}

func (p Principal) MarshalHex() string {
	return hex.EncodeToString(p[:])
}

// ComputeCommitment derives the commitment digest for the given reveal
// parameters and secret salt. Each parameter is length-prefixed before
// hashing so that parameter boundaries cannot be shifted, and the salt is
// absorbed last.
func ComputeCommitment(salt []byte, params ...[]byte) Commitment {
	h := sha256.New()

	var lenBuf [8]byte
	for _, param := range params {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(param)))
		h.Write(lenBuf[:])
		h.Write(param)
	}
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(salt)))
	h.Write(lenBuf[:])
	h.Write(salt)

	var c Commitment
	copy(c[:], h.Sum(nil))

	return c
}
