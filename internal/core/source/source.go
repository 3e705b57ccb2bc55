package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// maxParallelExtractions bounds how many files are converted at once.
const maxParallelExtractions = 4

var contentTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/plain",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".rtf":  "application/rtf",
	".html": "text/html",
	".htm":  "text/html",
	".xml":  "text/xml",
}

// ContentType maps a file name to the MIME type handed to the extractor.
// ok is false for extensions no extractor handles.
func ContentType(name string) (contentType string, ok bool) {
	ct, ok := contentTypes[strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))]
	return ct, ok
}

// extractAll reads and extracts ids with bounded concurrency; output keeps the order of ids.
func extractAll(ctx context.Context, ids []string, read func(ctx context.Context, id string) ([]byte, error), ext core.DocumentExtractor) ([]models.Document, error) {
	docs := make([]models.Document, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelExtractions)
	for i, id := range ids {
		g.Go(func() error {
			data, err := read(gctx, id)
			if err != nil {
				return fmt.Errorf("read %s: %w", id, err)
			}
			ct, _ := ContentType(id)
			text, err := ext.ExtractText(gctx, data, ct)
			if err != nil {
				return fmt.Errorf("extract %s: %w", id, err)
			}
			docs[i] = models.Document{SourceID: id, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
