package source

import (
	"context"
	"sort"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

var _ core.DocumentSource = (*ObjectSource)(nil)

// ObjectSource loads every supported object under a bucket prefix, in key order.
type ObjectSource struct {
	client    core.ObjectClient
	bucket    string
	prefix    string
	extractor core.DocumentExtractor
}

func NewObjectSource(client core.ObjectClient, bucket, prefix string, extractor core.DocumentExtractor) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, prefix: prefix, extractor: extractor}
}

func (s *ObjectSource) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.ListKeys(ctx, s.bucket, s.prefix)
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if _, ok := ContentType(k); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *ObjectSource) Load(ctx context.Context) ([]models.Document, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return extractAll(ctx, keys, func(ctx context.Context, key string) ([]byte, error) {
		return s.client.GetFile(ctx, s.bucket, key)
	}, s.extractor)
}
