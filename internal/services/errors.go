package services

import "errors"

var (
	// ErrNoWorkAvailable signals the unclaimed pool is exhausted. Not a
	// failure; the UI presents an idle state.
	ErrNoWorkAvailable = errors.New("no work available")

	// ErrClaimConflict signals the operator's claim no longer exists (it
	// expired and may have been reassigned). Recoverable: the operator
	// re-requests an assignment.
	ErrClaimConflict = errors.New("claim conflict")

	// ErrUnknownCategory rejects a vocabulary category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown vocabulary category")

	// ErrMissingVocabValue rejects a blank vocabulary value.
	ErrMissingVocabValue = errors.New("missing vocabulary value")
)
