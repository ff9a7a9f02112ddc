package store_test

import (
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/commitd-io/commitd/registry/config"
	"github.com/commitd-io/commitd/registry/store"
	"github.com/commitd-io/commitd/testutil"
)

// FuzzCommitmentStore tests basic put/get/overwrite behavior of the store
func FuzzCommitmentStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		cs, err := store.NewCommitmentStore(db)
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
		}()

		principal := testutil.GenRandomPrincipal(r)
		commitment := testutil.GenRandomCommitment(r)
		extraData := testutil.GenRandomByteArray(r, 1+uint64(r.Intn(64)))

		// no record before the first put
		_, err = cs.Get(principal, nil)
		require.ErrorIs(t, err, store.ErrCommitmentNotFound)

		ov1, err := cs.Put(principal, nil, commitment, extraData, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)
		require.Equal(t, uint64(1), ov1)

		record, err := cs.Get(principal, nil)
		require.NoError(t, err)
		require.Equal(t, commitment, record.Commitment)
		require.Equal(t, extraData, record.ExtraData)
		require.Equal(t, ov1, record.OrderingValue)

		// overwrite leaves only the new commitment retrievable
		replacement := testutil.GenRandomCommitment(r)
		ov2, err := cs.Put(principal, nil, replacement, nil, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)
		require.Greater(t, ov2, ov1)

		record, err = cs.Get(principal, nil)
		require.NoError(t, err)
		require.Equal(t, replacement, record.Commitment)
		require.Empty(t, record.ExtraData)

		// attached value survives the round trip
		otherPrincipal := testutil.GenRandomPrincipal(r)
		value := sdkmath.NewInt(r.Int63())
		_, err = cs.Put(otherPrincipal, nil, commitment, nil, value, time.Now().UTC())
		require.NoError(t, err)

		record, err = cs.Get(otherPrincipal, nil)
		require.NoError(t, err)
		require.True(t, record.Value.Equal(value))
	})
}

// FuzzTakeIfMatches tests the atomic check-and-delete consumption primitive
func FuzzTakeIfMatches(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		cs, err := store.NewCommitmentStore(db)
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
		}()

		principal := testutil.GenRandomPrincipal(r)
		commitment := testutil.GenRandomCommitment(r)

		ov, err := cs.Put(principal, nil, commitment, nil, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)

		// a wrong candidate leaves the record intact
		wrong := testutil.GenRandomCommitment(r)
		_, err = cs.TakeIfMatches(principal, nil, wrong, time.Time{})
		require.ErrorIs(t, err, store.ErrNoMatch)

		record, err := cs.Get(principal, nil)
		require.NoError(t, err)
		require.Equal(t, commitment, record.Commitment)

		// the matching candidate consumes the record exactly once
		record, err = cs.TakeIfMatches(principal, nil, commitment, time.Time{})
		require.NoError(t, err)
		require.Equal(t, commitment, record.Commitment)
		require.Equal(t, ov, record.OrderingValue)

		_, err = cs.TakeIfMatches(principal, nil, commitment, time.Time{})
		require.ErrorIs(t, err, store.ErrNoMatch)

		_, err = cs.Get(principal, nil)
		require.ErrorIs(t, err, store.ErrCommitmentNotFound)
	})
}

// FuzzOrderingValueMonotonic tests that ordering values never decrease,
// including across a store reopen
func FuzzOrderingValueMonotonic(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		cs, err := store.NewCommitmentStore(db)
		require.NoError(t, err)

		numCommits := 2 + r.Intn(20)
		var last uint64
		for i := 0; i < numCommits; i++ {
			principal := testutil.GenRandomPrincipal(r)
			ov, err := cs.Put(principal, nil, testutil.GenRandomCommitment(r), nil, sdkmath.ZeroInt(), time.Now().UTC())
			require.NoError(t, err)
			require.Greater(t, ov, last)
			last = ov
		}

		lastStored, err := cs.LastOrderingValue()
		require.NoError(t, err)
		require.Equal(t, last, lastStored)

		// the sequence survives a reopen
		require.NoError(t, db.Close())

		db, err = cfg.GetDBBackend()
		require.NoError(t, err)
		defer func() {
			err := db.Close()
			require.NoError(t, err)
		}()

		cs, err = store.NewCommitmentStore(db)
		require.NoError(t, err)

		ov, err := cs.Put(testutil.GenRandomPrincipal(r), nil, testutil.GenRandomCommitment(r), nil, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)
		require.Greater(t, ov, last)
	})
}

// FuzzNamespacedSlots tests that namespaces partition commitment slots
func FuzzNamespacedSlots(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		cs, err := store.NewCommitmentStore(db)
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
		}()

		principal := testutil.GenRandomPrincipal(r)
		nsA := []byte("proposal-a")
		nsB := []byte("proposal-b")
		commitmentA := testutil.GenRandomCommitment(r)
		commitmentB := testutil.GenRandomCommitment(r)

		_, err = cs.Put(principal, nsA, commitmentA, nil, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)
		_, err = cs.Put(principal, nsB, commitmentB, nil, sdkmath.ZeroInt(), time.Now().UTC())
		require.NoError(t, err)

		recordA, err := cs.Get(principal, nsA)
		require.NoError(t, err)
		require.Equal(t, commitmentA, recordA.Commitment)

		recordB, err := cs.Get(principal, nsB)
		require.NoError(t, err)
		require.Equal(t, commitmentB, recordB.Commitment)

		// consuming one slot leaves the other untouched
		_, err = cs.TakeIfMatches(principal, nsA, commitmentA, time.Time{})
		require.NoError(t, err)

		recordB, err = cs.Get(principal, nsB)
		require.NoError(t, err)
		require.Equal(t, commitmentB, recordB.Commitment)

		records, err := cs.ListRecords(nsB)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, commitmentB, records[0].Commitment)
	})
}

// FuzzPruneExpired tests removal of records older than a cutoff
func FuzzPruneExpired(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		cs, err := store.NewCommitmentStore(db)
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
		}()

		now := time.Now().UTC()

		numOld := 1 + r.Intn(10)
		for i := 0; i < numOld; i++ {
			_, err = cs.Put(testutil.GenRandomPrincipal(r), nil, testutil.GenRandomCommitment(r), nil, sdkmath.ZeroInt(), now.Add(-2*time.Hour))
			require.NoError(t, err)
		}

		freshPrincipal := testutil.GenRandomPrincipal(r)
		freshCommitment := testutil.GenRandomCommitment(r)
		_, err = cs.Put(freshPrincipal, nil, freshCommitment, nil, sdkmath.ZeroInt(), now)
		require.NoError(t, err)

		pruned, err := cs.PruneExpired(now.Add(-time.Hour))
		require.NoError(t, err)
		require.Equal(t, uint64(numOld), pruned)

		records, err := cs.ListRecords(nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, freshCommitment, records[0].Commitment)

		// an expired record is consumed as absent
		stalePrincipal := testutil.GenRandomPrincipal(r)
		staleCommitment := testutil.GenRandomCommitment(r)
		_, err = cs.Put(stalePrincipal, nil, staleCommitment, nil, sdkmath.ZeroInt(), now.Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = cs.TakeIfMatches(stalePrincipal, nil, staleCommitment, now.Add(-time.Hour))
		require.ErrorIs(t, err, store.ErrNoMatch)

		_, err = cs.Get(stalePrincipal, nil)
		require.ErrorIs(t, err, store.ErrCommitmentNotFound)
	})
}
