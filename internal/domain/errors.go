package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDimensionMismatch signals an embedding/index dimension disagreement.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrEmptyInput signals that no catalog rows or embeddings were supplied.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidQuery signals an empty query. Search reports it as a "no query" response, not an error.
	ErrInvalidQuery = errors.New("no query")
	// ErrMissingField signals a catalog row without an expected attribute.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidRequest signals malformed search parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotReady signals that the ANN index has not been built.
	ErrIndexNotReady = errors.New("index not ready")
)
