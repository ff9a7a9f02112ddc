package testutil

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"github.com/commitd-io/commitd/signingcontext"
	"github.com/commitd-io/commitd/types"
)

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	newHeaderBytes := make([]byte, length)
	r.Read(newHeaderBytes)

	return newHeaderBytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	randBytes := GenRandomByteArray(r, length)

	return hex.EncodeToString(randBytes)
}

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

func GenRandomCommitment(r *rand.Rand) types.Commitment {
	var c types.Commitment
	r.Read(c[:])

	return c
}

func GenRandomPrincipal(r *rand.Rand) types.Principal {
	var p types.Principal
	r.Read(p[:])

	return p
}

// GenRandomKeyPair generates a secp256k1 key pair seeded from r and returns
// the private key together with the key-holder principal id (the BIP-340
// x-only public key)
func GenRandomKeyPair(r *rand.Rand, t *testing.T) (*btcec.PrivateKey, types.Principal) {
	sk, err := secpPrivKeyFromRand(r)
	require.NoError(t, err)

	principal, err := types.PrincipalFromBytes(schnorr.SerializePubKey(sk.PubKey()))
	require.NoError(t, err)

	return sk, principal
}

func secpPrivKeyFromRand(r *rand.Rand) (*btcec.PrivateKey, error) {
	for {
		var keyBytes [32]byte
		r.Read(keyBytes[:])

		var scalar btcec.ModNScalar
		overflow := scalar.SetByteSlice(keyBytes[:])
		if overflow || scalar.IsZero() {
			continue
		}

		sk, _ := btcec.PrivKeyFromBytes(keyBytes[:])

		return sk, nil
	}
}

// SignCommitProof produces the Schnorr authorization proof binding the
// signer to the (commitment, extraData) tuple within a namespace
func SignCommitProof(
	t *testing.T,
	sk *btcec.PrivateKey,
	namespace []byte,
	onBehalfOf types.Principal,
	commitment types.Commitment,
	extraData []byte,
) []byte {
	digest := signingcontext.CommitTupleDigest(namespace, onBehalfOf, commitment, extraData)

	sig, err := schnorr.Sign(sk, digest[:])
	require.NoError(t, err)

	return sig.Serialize()
}
