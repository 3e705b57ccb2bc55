package ingestion_engine

import (
	"time"
)

const (
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultBatchSize       = 10
	DefaultBatchPause      = 300 * time.Millisecond
	DefaultUpsertAttempts  = 3
	DefaultRetryBaseDelay  = time.Second
	DefaultMaxPayloadBytes = 2 * 1024 * 1024
)

// IngestConfig tunes the pipeline.
//
// ChunkSize:       target characters per chunk.
// ChunkOverlap:    characters repeated from the previous chunk.
// BatchSize:       chunks embedded and upserted per call.
// BatchPause:      pause between two upserts of the same document.
// UpsertAttempts:  total upsert attempts per batch, first one included.
// RetryBaseDelay:  backoff unit; attempt n waits n*RetryBaseDelay before the next.
// MaxPayloadBytes: serialized size ceiling of one batch of records.
// EmbedDim:        expected vector length; 0 accepts whatever the model returns.
type IngestConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	BatchSize       int
	BatchPause      time.Duration
	UpsertAttempts  int
	RetryBaseDelay  time.Duration
	MaxPayloadBytes int
	EmbedDim        int
}

// DefaultIngestConfig returns the production defaults.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		BatchSize:       DefaultBatchSize,
		BatchPause:      DefaultBatchPause,
		UpsertAttempts:  DefaultUpsertAttempts,
		RetryBaseDelay:  DefaultRetryBaseDelay,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// withDefaults fills zero values. Negative pauses/delays are clamped to zero.
func (c IngestConfig) withDefaults() IngestConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchPause < 0 {
		c.BatchPause = 0
	}
	if c.UpsertAttempts <= 0 {
		c.UpsertAttempts = DefaultUpsertAttempts
	}
	if c.RetryBaseDelay < 0 {
		c.RetryBaseDelay = 0
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	return c
}

func (c IngestConfig) chunkerOptions() ChunkerOptions {
	return ChunkerOptions{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
	}
}
