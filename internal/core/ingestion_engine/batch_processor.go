package ingestion_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// ProgressFunc receives progress events in emission order.
type ProgressFunc func(models.ProgressEvent)

// Batch is a run of consecutive chunks from one document.
//
// SourceName:  short name of the document the chunks belong to.
// Chunks:      raw chunk texts, in document order.
// TotalChunks: chunk count of the whole document.
// Upserted:    chunks of this document already written before this batch.
type Batch struct {
	SourceName  string
	Chunks      []string
	TotalChunks int
	Upserted    int
}

// BatchProcessor embeds one batch, writes it to the vector index and reports progress.
type BatchProcessor struct {
	embedder core.EmbeddingProvider
	index    core.VectorIndex
	cfg      IngestConfig
	backoff  BackoffPolicy
	logger   *slog.Logger
}

// NewBatchProcessor wires a processor; cfg zero values take the defaults.
func NewBatchProcessor(emb core.EmbeddingProvider, index core.VectorIndex, cfg IngestConfig) *BatchProcessor {
	cfg = cfg.withDefaults()
	return &BatchProcessor{
		embedder: emb,
		index:    index,
		cfg:      cfg,
		backoff:  LinearBackoff(cfg.RetryBaseDelay),
		logger:   slog.Default().With("component", "batch-processor"),
	}
}

// RecordID is the stable ID of the chunk at position (1-based) of a document.
func RecordID(sourceName string, position int) string {
	return fmt.Sprintf("%s-chunk-%04d", sourceName, position)
}

// NormalizeChunk collapses whitespace runs to one space and trims both ends.
func NormalizeChunk(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Process writes b into req's index/namespace and returns the number of records written.
// Embedding failures and oversized payloads are returned at once; upserts are retried.
func (p *BatchProcessor) Process(ctx context.Context, req models.JobRequest, b Batch, progress ProgressFunc) (int, error) {
	if len(b.Chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(b.Chunks))
	for i, c := range b.Chunks {
		texts[i] = NormalizeChunk(c)
	}

	vecs, err := p.embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", b.SourceName, err)
	}

	records := make([]models.IndexRecord, len(texts))
	for i, text := range texts {
		position := b.Upserted + i + 1
		records[i] = models.IndexRecord{
			ID:     RecordID(b.SourceName, position),
			Vector: vecs[i],
			Metadata: models.RecordMetadata{
				Text:            text,
				SourceName:      b.SourceName,
				Position:        position,
				TotalChunks:     b.TotalChunks,
				ChunkByteLength: len(text),
			},
		}
	}

	if err := p.checkPayload(records); err != nil {
		return 0, fmt.Errorf("%s: %w", b.SourceName, err)
	}

	err = retryWithPolicy(ctx, p.logger, p.cfg.UpsertAttempts, p.backoff, func(ctx context.Context) error {
		return p.index.Upsert(ctx, req.IndexName, req.Namespace, records)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s chunks %d-%d after %d attempts: %w",
			ErrUpsertFailed, b.SourceName, b.Upserted+1, b.Upserted+len(records), p.cfg.UpsertAttempts, err)
	}

	if progress != nil {
		progress(models.ProgressEvent{
			SourceName:     b.SourceName,
			TotalChunks:    b.TotalChunks,
			ChunksUpserted: b.Upserted + len(records),
		})
	}
	return len(records), nil
}

func (p *BatchProcessor) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vecs), len(texts))
	}

	dim := len(vecs[0])
	if p.cfg.EmbedDim > 0 && dim != p.cfg.EmbedDim {
		return nil, fmt.Errorf("%w: vector dimension %d, expected %d", ErrEmbeddingFailed, dim, p.cfg.EmbedDim)
	}
	for i, v := range vecs {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d", ErrEmbeddingFailed, i, len(v), dim)
		}
	}
	return vecs, nil
}

func (p *BatchProcessor) checkPayload(records []models.IndexRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if len(payload) > p.cfg.MaxPayloadBytes {
		return fmt.Errorf("%w: %.2fMB exceeds %.2fMB limit", ErrPayloadTooLarge,
			float64(len(payload))/1024/1024, float64(p.cfg.MaxPayloadBytes)/1024/1024)
	}
	return nil
}
