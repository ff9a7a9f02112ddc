package types_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/commitd-io/commitd/testutil"
	"github.com/commitd-io/commitd/types"
)

// FuzzComputeCommitment tests determinism and boundary binding of the
// commitment digest
func FuzzComputeCommitment(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		salt := testutil.GenRandomByteArray(r, 32)
		a := testutil.GenRandomByteArray(r, 1+uint64(r.Intn(16)))
		b := testutil.GenRandomByteArray(r, 1+uint64(r.Intn(16)))

		c1 := types.ComputeCommitment(salt, a, b)
		c2 := types.ComputeCommitment(salt, a, b)
		require.Equal(t, c1, c2)
		require.False(t, c1.IsZero())

		// a different salt yields a different digest
		require.NotEqual(t, c1, types.ComputeCommitment(testutil.GenRandomByteArray(r, 32), a, b))

		// moving a byte across a parameter boundary changes the digest
		joined := append(append([]byte{}, a...), b...)
		require.NotEqual(t, c1, types.ComputeCommitment(salt, joined))
		require.NotEqual(t, c1, types.ComputeCommitment(salt, a[:len(a)-1], append([]byte{a[len(a)-1]}, b...)))

		// salt bytes cannot masquerade as a parameter
		require.NotEqual(t, c1, types.ComputeCommitment(nil, a, b, salt))
	})
}

func TestCommitmentFromBytes(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	raw := testutil.GenRandomByteArray(r, types.CommitmentSize)
	c, err := types.CommitmentFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, raw, c.Bytes())

	_, err = types.CommitmentFromBytes(raw[:types.CommitmentSize-1])
	require.Error(t, err)

	roundTripped, err := types.CommitmentFromHex(c.MarshalHex())
	require.NoError(t, err)
	require.Equal(t, c, roundTripped)

	_, err = types.CommitmentFromHex("not-hex")
	require.Error(t, err)
}

func TestPrincipalFromBytes(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	raw := testutil.GenRandomByteArray(r, types.PrincipalSize)
	p, err := types.PrincipalFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, raw, p.Bytes())

	_, err = types.PrincipalFromBytes(append(raw, 0x00))
	require.Error(t, err)

	roundTripped, err := types.PrincipalFromHex(p.MarshalHex())
	require.NoError(t, err)
	require.Equal(t, p, roundTripped)
}
