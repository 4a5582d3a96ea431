package store

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrRequestNotFound is returned when a request id has no stored BRequest.
	ErrRequestNotFound = errors.New("request not found")

	// ErrPendingIndexCorrupt is returned when the pending list and its
	// id->slot index have drifted out of sync, which should never happen
	// if AddPending/RemovePending are the only writers.
	ErrPendingIndexCorrupt = errors.New("pending index out of sync with pending list")
)
