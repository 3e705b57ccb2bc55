// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/markdave123-py/contexta-ingest/internal/config"
	"github.com/markdave123-py/contexta-ingest/internal/core"
	db "github.com/markdave123-py/contexta-ingest/internal/core/database"
	"github.com/markdave123-py/contexta-ingest/internal/core/ingestion_engine"
	"github.com/markdave123-py/contexta-ingest/internal/core/llm"
	objectclient "github.com/markdave123-py/contexta-ingest/internal/core/object-client"
	"github.com/markdave123-py/contexta-ingest/internal/core/source"
	"github.com/markdave123-py/contexta-ingest/internal/services"
)

type App struct {
	DBClient      db.DbClient
	Embedder      core.EmbeddingProvider
	Ingestor      *ingestion_engine.DocumentIngestor
	IngestService *services.IngestService
	Server        *Server

	closers []io.Closer
}

// NewApp connects every collaborator named by cfg and wires the ingestion service.
// documentsDir overrides cfg.DocumentsDir when non-empty.
func NewApp(ctx context.Context, cfg *config.Config, documentsDir string) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient)
	slog.Info("database initialized and ready")

	emb, err := NewEmbedder(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}
	a.Embedder = emb
	if c, ok := emb.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	slog.Info("embedder ready", "provider", cfg.EmbedProvider, "model", cfg.EmbedModel)

	src, err := NewSource(appCtx, cfg, documentsDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	ing, err := ingestion_engine.NewDocumentIngestor(emb, dbClient, IngestConfig(cfg))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Ingestor = ing
	a.IngestService = services.NewIngestService(src, ing)
	a.Server = NewServer(cfg, a.IngestService)
	return a, nil
}

// NewEmbedder builds the provider chosen by EMBED_PROVIDER.
func NewEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.BatchSize)
	case config.ProviderGemini:
		return llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	default:
		return nil, fmt.Errorf("unknown embed provider %q", cfg.EmbedProvider)
	}
}

// NewSource builds the document source chosen by SOURCE_KIND.
func NewSource(ctx context.Context, cfg *config.Config, documentsDir string) (core.DocumentSource, error) {
	useReadability := false
	extractor := ingestion_engine.NewDocconvExtractor(useReadability)

	switch cfg.SourceKind {
	case config.SourceS3:
		objClient, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("object client initialized and ready", "bucket", cfg.BucketName, "prefix", cfg.SourcePrefix)
		return source.NewObjectSource(objClient, cfg.BucketName, cfg.SourcePrefix, extractor), nil
	case config.SourceDir:
		dir := cfg.DocumentsDir
		if documentsDir != "" {
			dir = documentsDir
		}
		return source.NewDirectorySource(dir, extractor), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}
}

// IngestConfig maps the environment knobs onto the pipeline configuration.
func IngestConfig(cfg *config.Config) ingestion_engine.IngestConfig {
	return ingestion_engine.IngestConfig{
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		BatchSize:       cfg.BatchSize,
		BatchPause:      cfg.BatchPause,
		UpsertAttempts:  cfg.UpsertAttempts,
		RetryBaseDelay:  cfg.RetryBaseDelay,
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		EmbedDim:        cfg.EmbedDim,
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}
