package core

import (
	"context"

	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// VectorIndex is the write side of a namespaced vector store.
// The index and namespace must already exist; implementations never create them.
type VectorIndex interface {
	Upsert(ctx context.Context, indexName, namespace string, records []models.IndexRecord) error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// DocumentSource yields the documents a job ingests.
type DocumentSource interface {
	Load(ctx context.Context) ([]models.Document, error)
	// List returns the source IDs Load would read, without extracting them.
	List(ctx context.Context) ([]string, error)
}
