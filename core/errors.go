package core

import "errors"

// Error kinds for the memory engine. Callers classify failures with
// errors.Is; the concrete cause is attached by wrapping with fmt.Errorf
// and %w at the failure site.
var (
	// ErrTenantResolution means the identity store could not be reached
	// or the lookup/create of the internal user failed.
	ErrTenantResolution = errors.New("tenant resolution failed")

	// ErrEmbedding means the embedding model failed on a given text.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex means the vector store is unreachable or rejected a call.
	ErrIndex = errors.New("vector index failure")

	// ErrUnsupportedContentType means no document source handles the
	// given MIME type.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrStorageWrite means the durable history append failed.
	ErrStorageWrite = errors.New("durable storage write failed")

	// ErrConfirmationRequired guards destructive administrative calls:
	// the caller must pass an explicit confirmation flag.
	ErrConfirmationRequired = errors.New("confirmation required for destructive operation")
)
