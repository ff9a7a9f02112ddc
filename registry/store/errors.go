package store

import "errors"

var (
	// ErrCorruptedCommitmentDB For some reason, db on disk representation have changed
	ErrCorruptedCommitmentDB = errors.New("commitment db is corrupted")

	// ErrCommitmentNotFound no live commitment record for the principal in the namespace
	ErrCommitmentNotFound = errors.New("commitment record not found")

	// ErrNoMatch the candidate does not equal the stored commitment, no
	// commitment exists, or it was already consumed; intentionally a single
	// signal to avoid leaking which case applies
	ErrNoMatch = errors.New("no matching commitment")
)
