package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/commitd-io/commitd/types"
)

var (
	// ErrUnauthorized the commit-on-behalf authorization proof is missing or invalid
	ErrUnauthorized = errors.New("commit authorization proof missing or invalid")

	// ErrUnknownPrincipal no validation callback registered and the principal
	// is not a parseable public key
	ErrUnknownPrincipal = errors.New("principal kind cannot be determined")
)

// ProofVerifier verifies that a proof authorizes an action digest for a
// principal
type ProofVerifier interface {
	Verify(principal types.Principal, digest [32]byte, proof []byte) error
}

// SchnorrVerifier verifies proofs of key-holding principals. The principal
// identifier is the BIP-340 x-only public key and the proof is a 64-byte
// Schnorr signature over the digest.
type SchnorrVerifier struct{}

var _ ProofVerifier = SchnorrVerifier{}

func (SchnorrVerifier) Verify(principal types.Principal, digest [32]byte, proof []byte) error {
	pk, err := schnorr.ParsePubKey(principal.Bytes())
	if err != nil {
		return fmt.Errorf("%w: principal is not a valid BIP-340 public key: %v", ErrUnknownPrincipal, err)
	}

	sig, err := schnorr.ParseSignature(proof)
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %v", ErrUnauthorized, err)
	}

	if !sig.Verify(digest[:], pk) {
		return fmt.Errorf("%w: signature verification failed", ErrUnauthorized)
	}

	return nil
}

// ProofValidator is the standardized validation callback a programmable
// principal exposes to accept or reject proofs over a digest
type ProofValidator interface {
	ValidateProof(digest [32]byte, proof []byte) error
}

// DelegatedVerifier verifies proofs of programmable principals by delegating
// to the validation callback registered for the principal.
type DelegatedVerifier struct {
	mu         sync.RWMutex
	validators map[types.Principal]ProofValidator
}

var _ ProofVerifier = (*DelegatedVerifier)(nil)

func NewDelegatedVerifier() *DelegatedVerifier {
	return &DelegatedVerifier{
		validators: make(map[types.Principal]ProofValidator),
	}
}

// Register attaches a validation callback to a programmable principal,
// replacing any previous one
func (dv *DelegatedVerifier) Register(principal types.Principal, validator ProofValidator) {
	dv.mu.Lock()
	defer dv.mu.Unlock()

	dv.validators[principal] = validator
}

// Knows reports whether a validation callback is registered for the principal
func (dv *DelegatedVerifier) Knows(principal types.Principal) bool {
	dv.mu.RLock()
	defer dv.mu.RUnlock()

	_, ok := dv.validators[principal]

	return ok
}

func (dv *DelegatedVerifier) Verify(principal types.Principal, digest [32]byte, proof []byte) error {
	dv.mu.RLock()
	validator, ok := dv.validators[principal]
	dv.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: no validation callback registered for %s", ErrUnknownPrincipal, principal.MarshalHex())
	}

	if err := validator.ValidateProof(digest, proof); err != nil {
		return fmt.Errorf("%w: delegated validation rejected proof: %v", ErrUnauthorized, err)
	}

	return nil
}
