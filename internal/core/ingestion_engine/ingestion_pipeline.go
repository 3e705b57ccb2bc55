package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

var _ Ingestor = (*DocumentIngestor)(nil)

// JobSummary describes a finished job.
type JobSummary struct {
	JobID     string
	Documents []DocumentResult
	Elapsed   time.Duration
}

// ChunksUpserted sums the records written across all documents.
func (s JobSummary) ChunksUpserted() int {
	total := 0
	for _, d := range s.Documents {
		total += d.ChunksUpserted
	}
	return total
}

// DocumentIngestor runs ingestion jobs. It holds no per-job state, so one
// instance serves every job of the process.
type DocumentIngestor struct {
	docs   *DocumentProcessor
	logger *slog.Logger
}

// NewDocumentIngestor wires the batch and document processors for cfg.
func NewDocumentIngestor(emb core.EmbeddingProvider, index core.VectorIndex, cfg IngestConfig) (*DocumentIngestor, error) {
	dp, err := NewDocumentProcessor(NewBatchProcessor(emb, index, cfg), cfg)
	if err != nil {
		return nil, err
	}
	return &DocumentIngestor{
		docs:   dp,
		logger: slog.Default().With("component", "ingestor"),
	}, nil
}

// ValidateRequest rejects blank index names and namespaces.
func ValidateRequest(req models.JobRequest) error {
	if strings.TrimSpace(req.IndexName) == "" {
		return fmt.Errorf("%w: index name required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Namespace) == "" {
		return fmt.Errorf("%w: namespace required", ErrInvalidRequest)
	}
	return nil
}

// Run ingests docs one after another, in order. The first error stops the job
// and is returned; on success a single completion event ends the progress stream.
func (i *DocumentIngestor) Run(ctx context.Context, req models.JobRequest, docs []models.Document, progress ProgressFunc) (JobSummary, error) {
	summary := JobSummary{JobID: uuid.NewString()}
	if err := ValidateRequest(req); err != nil {
		return summary, err
	}
	if progress == nil {
		progress = func(models.ProgressEvent) {}
	}

	started := time.Now()
	logger := i.logger.With("job", summary.JobID, "index", req.IndexName, "namespace", req.Namespace)
	logger.Info("job started", "documents", len(docs))

	for _, doc := range docs {
		res, err := i.docs.Process(ctx, req, doc, progress)
		if err != nil {
			summary.Elapsed = time.Since(started)
			logger.Error("job failed", "source", res.SourceName, "upserted", res.ChunksUpserted, "err", err)
			return summary, err
		}
		summary.Documents = append(summary.Documents, res)
		logger.Info("document done", "source", res.SourceName, "chunks", res.TotalChunks)
	}

	summary.Elapsed = time.Since(started)
	progress(models.CompletionEvent())
	logger.Info("job complete", "documents", len(summary.Documents), "chunks", summary.ChunksUpserted(), "elapsed", summary.Elapsed)
	return summary, nil
}
