package auth_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"github.com/commitd-io/commitd/auth"
	"github.com/commitd-io/commitd/signingcontext"
	"github.com/commitd-io/commitd/testutil"
	"github.com/commitd-io/commitd/types"
)

// FuzzSchnorrAuthorization tests key-holder proofs over the commit tuple
// digest
func FuzzSchnorrAuthorization(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		authorizer := auth.NewAuthorizer(false, nil, testutil.GetTestLogger(t))

		caller := testutil.GenRandomPrincipal(r)
		sk, onBehalfOf := testutil.GenRandomKeyPair(r, t)
		namespace := testutil.GenRandomByteArray(r, 12)
		commitment := testutil.GenRandomCommitment(r)
		extraData := testutil.GenRandomByteArray(r, 1+uint64(r.Intn(32)))

		// self-commit needs no proof outside strict mode
		err := authorizer.Authorize(onBehalfOf, onBehalfOf, namespace, commitment, extraData, nil)
		require.NoError(t, err)

		// on-behalf-of without a proof is rejected
		err = authorizer.Authorize(caller, onBehalfOf, namespace, commitment, extraData, nil)
		require.ErrorIs(t, err, auth.ErrUnauthorized)

		proof := testutil.SignCommitProof(t, sk, namespace, onBehalfOf, commitment, extraData)
		err = authorizer.Authorize(caller, onBehalfOf, namespace, commitment, extraData, proof)
		require.NoError(t, err)

		// the proof binds the full tuple: any component change invalidates it
		err = authorizer.Authorize(caller, onBehalfOf, namespace, testutil.GenRandomCommitment(r), extraData, proof)
		require.ErrorIs(t, err, auth.ErrUnauthorized)

		err = authorizer.Authorize(caller, onBehalfOf, namespace, commitment, testutil.GenRandomByteArray(r, 4), proof)
		require.ErrorIs(t, err, auth.ErrUnauthorized)

		err = authorizer.Authorize(caller, onBehalfOf, testutil.GenRandomByteArray(r, 12), commitment, extraData, proof)
		require.ErrorIs(t, err, auth.ErrUnauthorized)

		// a proof signed by a different key does not authorize this principal
		otherSk, _ := testutil.GenRandomKeyPair(r, t)
		forged := testutil.SignCommitProof(t, otherSk, namespace, onBehalfOf, commitment, extraData)
		err = authorizer.Authorize(caller, onBehalfOf, namespace, commitment, extraData, forged)
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestStrictSelfCommit(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	authorizer := auth.NewAuthorizer(true, nil, testutil.GetTestLogger(t))

	sk, principal := testutil.GenRandomKeyPair(r, t)
	commitment := testutil.GenRandomCommitment(r)

	err := authorizer.Authorize(principal, principal, nil, commitment, nil, nil)
	require.ErrorIs(t, err, auth.ErrUnauthorized)

	proof := testutil.SignCommitProof(t, sk, nil, principal, commitment, nil)
	err = authorizer.Authorize(principal, principal, nil, commitment, nil, proof)
	require.NoError(t, err)
}

type digestRecorder struct {
	seen   [][32]byte
	reject bool
}

func (d *digestRecorder) ValidateProof(digest [32]byte, _ []byte) error {
	d.seen = append(d.seen, digest)
	if d.reject {
		return errors.New("validation callback said no")
	}

	return nil
}

func TestDelegatedDispatch(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	delegated := auth.NewDelegatedVerifier()
	authorizer := auth.NewAuthorizer(false, delegated, testutil.GetTestLogger(t))

	caller := testutil.GenRandomPrincipal(r)
	programmable := testutil.GenRandomPrincipal(r)
	namespace := []byte("sealed-bids")
	commitment := testutil.GenRandomCommitment(r)
	extraData := []byte("bidder-7")

	recorder := &digestRecorder{}
	delegated.Register(programmable, recorder)
	require.True(t, delegated.Knows(programmable))
	require.False(t, delegated.Knows(caller))

	err := authorizer.Authorize(caller, programmable, namespace, commitment, extraData, []byte("opaque"))
	require.NoError(t, err)

	// the callback receives the same digest a key holder would sign
	expected := signingcontext.CommitTupleDigest(namespace, programmable, commitment, extraData)
	require.Len(t, recorder.seen, 1)
	require.Equal(t, expected, recorder.seen[0])

	recorder.reject = true
	err = authorizer.Authorize(caller, programmable, namespace, commitment, extraData, []byte("opaque"))
	require.ErrorIs(t, err, auth.ErrUnauthorized)

	// unregistered programmable-looking principals fall through to key-holder
	// verification and fail principal parsing when the id is not a valid key
	unknown := types.Principal{0xff}
	if _, parseErr := schnorr.ParsePubKey(unknown.Bytes()); parseErr != nil {
		err = authorizer.Authorize(caller, unknown, namespace, commitment, extraData, []byte("opaque"))
		require.ErrorIs(t, err, auth.ErrUnknownPrincipal)
	}
}
