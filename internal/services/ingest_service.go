package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/core/ingestion_engine"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// StreamMessage is one item of a job's progress stream. Exactly one field is set.
// FileList holds file names with their extensions; events use the short SourceName.
type StreamMessage struct {
	FileList []string
	Event    *models.ProgressEvent
	Err      error
}

// IngestService starts ingestion jobs over the configured document source
// and turns their progress into a stream.
type IngestService struct {
	source   core.DocumentSource
	ingestor ingestion_engine.Ingestor
	logger   *slog.Logger
}

func NewIngestService(source core.DocumentSource, ingestor ingestion_engine.Ingestor) *IngestService {
	return &IngestService{
		source:   source,
		ingestor: ingestor,
		logger:   slog.Default().With("component", "ingest_service"),
	}
}

// Start validates req and launches the job. A validation error is returned
// directly and nothing is loaded. Otherwise the returned channel yields the
// file list, every progress event and then closes; a failure ends the stream
// with a single Err message instead of the completion event.
//
// The job ignores cancellation of ctx: callers must drain the channel.
func (s *IngestService) Start(ctx context.Context, req models.JobRequest) (<-chan StreamMessage, error) {
	if err := ingestion_engine.ValidateRequest(req); err != nil {
		return nil, err
	}

	out := make(chan StreamMessage, 16)
	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("ingestion job panicked", "panic", r)
				out <- StreamMessage{Err: fmt.Errorf("ingestion job aborted: %v", r)}
			}
		}()
		s.run(jobCtx, req, out)
	}()
	return out, nil
}

func (s *IngestService) run(ctx context.Context, req models.JobRequest, out chan<- StreamMessage) {
	docs, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("loading documents failed", "err", err)
		out <- StreamMessage{Err: fmt.Errorf("load documents: %w", err)}
		return
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = models.FileName(d.SourceID)
	}
	out <- StreamMessage{FileList: names}

	_, err = s.ingestor.Run(ctx, req, docs, func(ev models.ProgressEvent) {
		out <- StreamMessage{Event: &ev}
	})
	if err != nil {
		out <- StreamMessage{Err: err}
	}
}

// ListDocuments returns the short names of the documents a job would ingest now.
func (s *IngestService) ListDocuments(ctx context.Context) ([]string, error) {
	ids, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = models.SourceName(id)
	}
	return names, nil
}
