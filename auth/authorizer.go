package auth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/commitd-io/commitd/signingcontext"
	"github.com/commitd-io/commitd/types"
)

// Authorizer validates that a commit request is authorized by the principal
// on whose behalf it is made. Self-commits are granted without a proof
// unless strict mode is on; commits on behalf of another principal always
// require a proof over the commit tuple digest.
//
// Principal kind is dispatched through the delegated verifier: a principal
// with a registered validation callback is programmable, anything else is
// treated as a key-holding principal.
type Authorizer struct {
	strict    bool
	keyHolder ProofVerifier
	delegated *DelegatedVerifier
	logger    *zap.Logger
}

func NewAuthorizer(strict bool, delegated *DelegatedVerifier, logger *zap.Logger) *Authorizer {
	if delegated == nil {
		delegated = NewDelegatedVerifier()
	}

	return &Authorizer{
		strict:    strict,
		keyHolder: SchnorrVerifier{},
		delegated: delegated,
		logger:    logger,
	}
}

// Delegated exposes the delegated verifier so callers can register
// programmable principals
func (a *Authorizer) Delegated() *DelegatedVerifier {
	return a.delegated
}

// Authorize returns nil if the request to commit (commitment, extraData) on
// behalf of onBehalfOf is authorized, ErrUnauthorized otherwise
func (a *Authorizer) Authorize(caller, onBehalfOf types.Principal, namespace []byte, commitment types.Commitment, extraData, proof []byte) error {
	if caller == onBehalfOf && !a.strict {
		return nil
	}

	digest := signingcontext.CommitTupleDigest(namespace, onBehalfOf, commitment, extraData)

	var err error
	if a.delegated.Knows(onBehalfOf) {
		err = a.delegated.Verify(onBehalfOf, digest, proof)
	} else {
		err = a.keyHolder.Verify(onBehalfOf, digest, proof)
	}
	if err != nil {
		a.logger.Debug(
			"rejected commit authorization",
			zap.String("caller", caller.MarshalHex()),
			zap.String("on_behalf_of", onBehalfOf.MarshalHex()),
			zap.Error(err),
		)

		return fmt.Errorf("failed to authorize commit for %s: %w", onBehalfOf.MarshalHex(), err)
	}

	return nil
}
