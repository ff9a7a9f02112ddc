package signingcontext

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/commitd-io/commitd/types"
)

const (
	protocolName = "commitreveal"
	versionV0    = "0"
	commitOp     = "commit"
)

func commitRevealV0Context(operationTag string, namespace string, principal string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", protocolName, versionV0, operationTag, namespace, principal)
}

// HashedHexContext returns the hex encoded sha256 hash of the context string i.e
// hex(sha256(contextString))
func HashedHexContext(contextString string) string {
	bytes := sha256.Sum256([]byte(contextString))

	return hex.EncodeToString(bytes[:])
}

// CommitContextV0 returns context string in format:
// commitreveal/0/commit/{namespace}/{principal}
func CommitContextV0(namespace []byte, principal types.Principal) string {
	return HashedHexContext(commitRevealV0Context(commitOp, hex.EncodeToString(namespace), principal.MarshalHex()))
}

// CommitTupleDigest is the digest an authorization proof must cover to commit
// on behalf of a principal. It binds the principal to the exact
// (commitment, extraData) tuple within a namespace:
//
//	sha256(CommitContextV0(namespace, principal) || commitment || sha256(extraData))
func CommitTupleDigest(namespace []byte, onBehalfOf types.Principal, commitment types.Commitment, extraData []byte) [32]byte {
	extraDigest := sha256.Sum256(extraData)

	h := sha256.New()
	h.Write([]byte(CommitContextV0(namespace, onBehalfOf)))
	h.Write(commitment.Bytes())
	h.Write(extraDigest[:])

	var digest [32]byte
	copy(digest[:], h.Sum(nil))

	return digest
}
