package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/markdave123-py/contexta-ingest/internal/core"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

var _ core.DocumentSource = (*DirectorySource)(nil)

// DirectorySource loads every supported file below a directory, in lexical path order.
type DirectorySource struct {
	dir       string
	extractor core.DocumentExtractor
}

func NewDirectorySource(dir string, extractor core.DocumentExtractor) *DirectorySource {
	return &DirectorySource{dir: dir, extractor: extractor}
}

func (s *DirectorySource) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := ContentType(p); !ok {
			slog.Debug("skipping unsupported file", "path", p)
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.dir, err)
	}
	return paths, nil
}

func (s *DirectorySource) Load(ctx context.Context) ([]models.Document, error) {
	paths, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return extractAll(ctx, paths, func(_ context.Context, p string) ([]byte, error) {
		return os.ReadFile(p)
	}, s.extractor)
}
