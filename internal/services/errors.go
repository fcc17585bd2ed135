package services

import (
	"errors"
)

// Failure classes surfaced by the scan/product lookup services. Callers
// branch with errors.Is; the wrapped cause stays attached for logging.
var (
	// ErrGenerationFailed: the external generation call failed or timed
	// out. Nothing was persisted for this attempt.
	ErrGenerationFailed = errors.New("analysis generation failed")

	// ErrStoreUnavailable: durable storage could not serve a read or
	// write. Lookups never fall back to regenerating on storage errors,
	// that would turn a database outage into a generation stampede.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrProductNotFound: the requested catalog product does not exist.
	ErrProductNotFound = errors.New("product not found")
)
