package ingestion_engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// DocumentResult accumulates the counters of one processed document.
type DocumentResult struct {
	SourceName     string
	TotalChunks    int
	ChunksUpserted int
}

// DocumentProcessor chunks one document and feeds its batches to a BatchProcessor.
type DocumentProcessor struct {
	chunker   *Chunker
	batches   *BatchProcessor
	batchSize int
	pause     time.Duration
	logger    *slog.Logger
}

// NewDocumentProcessor builds the chunker from cfg and validates it.
func NewDocumentProcessor(bp *BatchProcessor, cfg IngestConfig) (*DocumentProcessor, error) {
	cfg = cfg.withDefaults()
	chunker, err := NewChunker(cfg.chunkerOptions())
	if err != nil {
		return nil, err
	}
	return &DocumentProcessor{
		chunker:   chunker,
		batches:   bp,
		batchSize: cfg.BatchSize,
		pause:     cfg.BatchPause,
		logger:    slog.Default().With("component", "document-processor"),
	}, nil
}

// Process upserts every chunk of doc. Errors from the batch processor are returned unchanged.
func (d *DocumentProcessor) Process(ctx context.Context, req models.JobRequest, doc models.Document, progress ProgressFunc) (DocumentResult, error) {
	chunks := d.chunker.Split(doc.Text)
	res := DocumentResult{SourceName: doc.Name(), TotalChunks: len(chunks)}

	d.logger.Info("processing document", "source", res.SourceName, "chunks", res.TotalChunks)

	batcher := NewBatcher(chunks, d.batchSize)
	for batch, ok := batcher.Next(); ok; batch, ok = batcher.Next() {
		n, err := d.batches.Process(ctx, req, Batch{
			SourceName:  res.SourceName,
			Chunks:      batch,
			TotalChunks: res.TotalChunks,
			Upserted:    res.ChunksUpserted,
		}, progress)
		if err != nil {
			return res, err
		}
		res.ChunksUpserted += n

		if batcher.Remaining() > 0 {
			if err := sleep(ctx, d.pause); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
