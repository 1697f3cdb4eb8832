package model

import "errors"

// Failure taxonomy - used across all layers
var (
	// ErrModelLoad indicates the embedding model could not be loaded.
	// Fatal to embedding, no query can proceed until resolved.
	ErrModelLoad = errors.New("embedding model load failed")

	// ErrRetrieval indicates the vector index is unreachable or inconsistent.
	// Surfaced to the caller, never retried silently or converted into an answer.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGenerationTimeout indicates the external answer call exceeded its bound
	ErrGenerationTimeout = errors.New("answer generation timed out")

	// ErrLoggingFailure indicates a query log write failed.
	// Reported out-of-band only, never propagated on the request path.
	ErrLoggingFailure = errors.New("query logging failed")
)
