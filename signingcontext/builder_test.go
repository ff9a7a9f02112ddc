package signingcontext_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/commitd-io/commitd/signingcontext"
	"github.com/commitd-io/commitd/testutil"
)

// FuzzCommitTupleDigest tests that the signing digest binds every tuple
// component and is stable for identical inputs
func FuzzCommitTupleDigest(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		namespace := testutil.GenRandomByteArray(r, 8)
		principal := testutil.GenRandomPrincipal(r)
		commitment := testutil.GenRandomCommitment(r)
		extraData := testutil.GenRandomByteArray(r, 16)

		digest := signingcontext.CommitTupleDigest(namespace, principal, commitment, extraData)
		require.Equal(t, digest, signingcontext.CommitTupleDigest(namespace, principal, commitment, extraData))

		require.NotEqual(t, digest, signingcontext.CommitTupleDigest(testutil.GenRandomByteArray(r, 8), principal, commitment, extraData))
		require.NotEqual(t, digest, signingcontext.CommitTupleDigest(namespace, testutil.GenRandomPrincipal(r), commitment, extraData))
		require.NotEqual(t, digest, signingcontext.CommitTupleDigest(namespace, principal, testutil.GenRandomCommitment(r), extraData))
		require.NotEqual(t, digest, signingcontext.CommitTupleDigest(namespace, principal, commitment, testutil.GenRandomByteArray(r, 16)))
	})
}

func TestCommitContextV0(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	principal := testutil.GenRandomPrincipal(r)

	ctx := signingcontext.CommitContextV0([]byte("auction"), principal)
	// a hashed context is a fixed-length hex string
	require.Len(t, ctx, 64)
	require.Equal(t, ctx, signingcontext.CommitContextV0([]byte("auction"), principal))
	require.NotEqual(t, ctx, signingcontext.CommitContextV0([]byte("vote"), principal))
	require.NotEqual(t, ctx, signingcontext.CommitContextV0([]byte("auction"), testutil.GenRandomPrincipal(r)))
}
