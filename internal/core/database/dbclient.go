package db

import (
	"context"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// DbClient is the Postgres/pgvector vector store. Upsert is the only call the
// pipeline makes; the namespace helpers serve operators.
type DbClient interface {
	core.VectorIndex

	CreateNamespace(ctx context.Context, indexName, namespace string, dimension int) error
	ListNamespaces(ctx context.Context) ([]models.Namespace, error)
	CountRecords(ctx context.Context, indexName, namespace string) (int, error)

	Close() error
}
