package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/commitd-io/commitd/types"
)

var (
	// mapping: namespace || principal -> storedCommitment
	commitmentBucketName = []byte("commitments")
	// single key holding the last assigned ordering value
	sequenceBucketName = []byte("sequence")
)

var lastSequenceKey = []byte("last")

// CommitmentStore keeps the latest commitment record per (namespace,
// principal) slot. Acceptance writes and the ordering-value sequence update
// happen in one transaction, and TakeIfMatches is an atomic check-and-delete,
// so no caller can observe a partially applied mutation.
type CommitmentStore struct {
	db kvdb.Backend
}

// NewCommitmentStore returns a new store backed by db
func NewCommitmentStore(db kvdb.Backend) (*CommitmentStore, error) {
	s := &CommitmentStore{db}
	if err := s.initBuckets(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *CommitmentStore) initBuckets() error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		if _, err := tx.CreateTopLevelBucket(commitmentBucketName); err != nil {
			return fmt.Errorf("failed to create commitment bucket: %w", err)
		}
		if _, err := tx.CreateTopLevelBucket(sequenceBucketName); err != nil {
			return fmt.Errorf("failed to create sequence bucket: %w", err)
		}

		return nil
	})
}

// recordKey is (namespace || principal); the principal suffix is fixed-size
// so the split is unambiguous
func recordKey(namespace []byte, principal types.Principal) []byte {
	key := make([]byte, 0, len(namespace)+types.PrincipalSize)
	key = append(key, namespace...)
	key = append(key, principal.Bytes()...)

	return key
}

func splitRecordKey(key []byte) (types.Principal, []byte, error) {
	if len(key) < types.PrincipalSize {
		return types.Principal{}, nil, ErrCorruptedCommitmentDB
	}

	principal, err := types.PrincipalFromBytes(key[len(key)-types.PrincipalSize:])
	if err != nil {
		return types.Principal{}, nil, ErrCorruptedCommitmentDB
	}

	namespace := make([]byte, len(key)-types.PrincipalSize)
	copy(namespace, key[:len(key)-types.PrincipalSize])

	return principal, namespace, nil
}

// Put inserts or overwrites the record for the principal within the
// namespace and assigns the next ordering value. The record write and the
// sequence update are committed in the same transaction.
func (s *CommitmentStore) Put(
	principal types.Principal,
	namespace []byte,
	commitment types.Commitment,
	extraData []byte,
	value sdkmath.Int,
	createdAt time.Time,
) (uint64, error) {
	key := recordKey(namespace, principal)

	var orderingValue uint64
	err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(commitmentBucketName)
		if bucket == nil {
			return ErrCorruptedCommitmentDB
		}
		seqBucket := tx.ReadWriteBucket(sequenceBucketName)
		if seqBucket == nil {
			return ErrCorruptedCommitmentDB
		}

		next := uint64(1)
		if last := seqBucket.Get(lastSequenceKey); last != nil {
			if len(last) != 8 {
				return ErrCorruptedCommitmentDB
			}
			next = binary.BigEndian.Uint64(last) + 1
		}

		marshalled, err := marshalCommitment(commitment, extraData, next, value, createdAt)
		if err != nil {
			return fmt.Errorf("failed to marshal commitment record: %w", err)
		}

		if err := bucket.Put(key, marshalled); err != nil {
			return fmt.Errorf("failed to store commitment record: %w", err)
		}
		if err := seqBucket.Put(lastSequenceKey, uint64ToBytes(next)); err != nil {
			return fmt.Errorf("failed to store ordering sequence: %w", err)
		}

		orderingValue = next

		return nil
	})
	if err != nil {
		return 0, err
	}

	return orderingValue, nil
}

// Get returns the live record for the principal within the namespace
func (s *CommitmentStore) Get(principal types.Principal, namespace []byte) (*types.CommitmentRecord, error) {
	key := recordKey(namespace, principal)

	var record *types.CommitmentRecord
	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(commitmentBucketName)
		if bucket == nil {
			return ErrCorruptedCommitmentDB
		}

		recordBytes := bucket.Get(key)
		if recordBytes == nil {
			return ErrCommitmentNotFound
		}

		sc, err := unmarshalCommitment(recordBytes)
		if err != nil {
			return err
		}

		record, err = sc.toRecord(principal, namespace)

		return err
	}, func() { record = nil })
	if err != nil {
		return nil, err
	}

	return record, nil
}

// TakeIfMatches atomically compares the stored commitment against candidate
// and, on match, deletes and returns the record. On mismatch or absence it
// returns ErrNoMatch and leaves state untouched. A record created before
// staleBefore is removed and reported as ErrNoMatch; a zero staleBefore
// disables the expiry check.
func (s *CommitmentStore) TakeIfMatches(
	principal types.Principal,
	namespace []byte,
	candidate types.Commitment,
	staleBefore time.Time,
) (*types.CommitmentRecord, error) {
	key := recordKey(namespace, principal)

	var record *types.CommitmentRecord
	var expired bool
	err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		record = nil
		expired = false

		bucket := tx.ReadWriteBucket(commitmentBucketName)
		if bucket == nil {
			return ErrCorruptedCommitmentDB
		}

		recordBytes := bucket.Get(key)
		if recordBytes == nil {
			return ErrNoMatch
		}

		sc, err := unmarshalCommitment(recordBytes)
		if err != nil {
			return err
		}

		if !staleBefore.IsZero() && time.UnixMilli(sc.CreatedAt).Before(staleBefore) {
			// the transaction must commit for the lazy delete to persist,
			// so expiry is reported after it instead of as a closure error
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete expired commitment record: %w", err)
			}
			expired = true

			return nil
		}

		if !bytes.Equal(sc.Commitment, candidate.Bytes()) {
			return ErrNoMatch
		}

		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete consumed commitment record: %w", err)
		}

		record, err = sc.toRecord(principal, namespace)

		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		// expired records are indistinguishable from absent ones
		return nil, ErrNoMatch
	}

	return record, nil
}

// LastOrderingValue returns the last assigned ordering value, zero if no
// commitment was ever accepted
func (s *CommitmentStore) LastOrderingValue() (uint64, error) {
	var last uint64
	err := s.db.View(func(tx kvdb.RTx) error {
		seqBucket := tx.ReadBucket(sequenceBucketName)
		if seqBucket == nil {
			return ErrCorruptedCommitmentDB
		}

		lastBytes := seqBucket.Get(lastSequenceKey)
		if lastBytes == nil {
			return nil
		}
		if len(lastBytes) != 8 {
			return ErrCorruptedCommitmentDB
		}
		last = binary.BigEndian.Uint64(lastBytes)

		return nil
	}, func() { last = 0 })
	if err != nil {
		return 0, err
	}

	return last, nil
}

// ListRecords returns all live records within the namespace; a nil namespace
// returns every record
func (s *CommitmentStore) ListRecords(namespace []byte) ([]*types.CommitmentRecord, error) {
	var records []*types.CommitmentRecord

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(commitmentBucketName)
		if bucket == nil {
			return ErrCorruptedCommitmentDB
		}

		return bucket.ForEach(func(k, v []byte) error {
			principal, ns, err := splitRecordKey(k)
			if err != nil {
				return err
			}
			if namespace != nil && !bytes.Equal(ns, namespace) {
				return nil
			}

			sc, err := unmarshalCommitment(v)
			if err != nil {
				return err
			}

			record, err := sc.toRecord(principal, ns)
			if err != nil {
				return err
			}
			records = append(records, record)

			return nil
		})
	}, func() { records = nil })
	if err != nil {
		return nil, err
	}

	return records, nil
}

// PruneExpired removes all records created before the cutoff and returns the
// number of removed records
func (s *CommitmentStore) PruneExpired(cutoff time.Time) (uint64, error) {
	var pruned uint64

	err := s.db.Update(func(tx walletdb.ReadWriteTx) error {
		pruned = 0

		bucket := tx.ReadWriteBucket(commitmentBucketName)
		if bucket == nil {
			return walletdb.ErrBucketNotFound
		}

		cursor := bucket.ReadWriteCursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			sc, err := unmarshalCommitment(v)
			if err != nil {
				return err
			}

			if time.UnixMilli(sc.CreatedAt).Before(cutoff) {
				if err := cursor.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}

		return nil
	}, func() {})
	if err != nil {
		return 0, err
	}

	return pruned, nil
}

// Converts an uint64 value to a byte slice.
func uint64ToBytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)

	return buf[:]
}
