package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/contexta-ingest/internal/models"
)

type Ingestor interface {
	Run(ctx context.Context, req models.JobRequest, docs []models.Document, progress ProgressFunc) (JobSummary, error)
}
