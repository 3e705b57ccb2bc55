package ingestion_engine

import "errors"

var (
	// ErrInvalidRequest is returned when the index name or namespace is blank.
	ErrInvalidRequest = errors.New("invalid ingest request")

	// ErrInvalidChunkerOptions is returned for a non-positive chunk size or an
	// overlap that does not fit inside a chunk.
	ErrInvalidChunkerOptions = errors.New("invalid chunker options")

	// ErrPayloadTooLarge is returned when a batch serializes above the ceiling.
	ErrPayloadTooLarge = errors.New("batch payload too large")

	// ErrEmbeddingFailed wraps any failure of the embedding call or its output.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrUpsertFailed is returned once every upsert attempt for a batch failed.
	ErrUpsertFailed = errors.New("upsert failed")
)
