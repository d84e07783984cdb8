// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)

// Diary gate outcomes. Each one is a distinct, recoverable rejection.
var (
	// ErrAlreadyExpired: the writable window of the effective authoring day is closed at create time.
	ErrAlreadyExpired = errors.New("writing time has expired for this date")

	// ErrDuplicateEntry: the author already wrote an entry for the effective authoring day.
	ErrDuplicateEntry = errors.New("entry already written for this date")

	// ErrWindowClosed: the entry's own deadline has passed, editing is locked.
	ErrWindowClosed = errors.New("entry can no longer be edited")
)

// Pairing outcomes.
var (
	// ErrNoPartner indicates a partner-dependent operation on an unpaired user.
	ErrNoPartner = errors.New("no partner connected")

	// ErrAlreadyPaired indicates the user (or the other side) already has a partner.
	ErrAlreadyPaired = errors.New("already paired")

	// ErrSelfPairing indicates a partner request addressed to oneself.
	ErrSelfPairing = errors.New("cannot pair with yourself")

	// ErrRequestExists indicates a pending partner request between the two users.
	ErrRequestExists = errors.New("partner request already exists")
)
