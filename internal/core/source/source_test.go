package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExtractor struct {
	mu    sync.Mutex
	types map[string]int
	err   error
}

func (e *recordingExtractor) ExtractText(_ context.Context, data []byte, contentType string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.types == nil {
		e.types = map[string]int{}
	}
	e.types[contentType]++
	if e.err != nil {
		return "", e.err
	}
	return string(data), nil
}

type fakeObjects struct {
	objects map[string]string
	listErr error
}

func (f *fakeObjects) ListKeys(_ context.Context, _, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeObjects) GetFile(_ context.Context, _, key string) ([]byte, error) {
	v, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return []byte(v), nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType("docs/Report.PDF")
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", ct)

	ct, ok = ContentType(`C:\notes\todo.md`)
	assert.True(t, ok)
	assert.Equal(t, "text/plain", ct)

	_, ok = ContentType("image.png")
	assert.False(t, ok)
	_, ok = ContentType("README")
	assert.False(t, ok)
}

func TestDirectorySource_LoadsInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "bravo")
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")
	writeFile(t, filepath.Join(dir, "sub", "c.html"), "<p>charlie</p>")
	writeFile(t, filepath.Join(dir, "logo.png"), "binary")

	ext := &recordingExtractor{}
	src := NewDirectorySource(dir, ext)

	ids, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.html"),
	}, ids)

	docs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "alpha", docs[0].Text)
	assert.Equal(t, "a", docs[0].Name())
	assert.Equal(t, "bravo", docs[1].Text)
	assert.Equal(t, "c", docs[2].Name())
	assert.Equal(t, 2, ext.types["text/plain"])
	assert.Equal(t, 1, ext.types["text/html"])
}

func TestDirectorySource_Errors(t *testing.T) {
	_, err := NewDirectorySource(filepath.Join(t.TempDir(), "missing"), &recordingExtractor{}).Load(context.Background())
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	boom := errors.New("boom")
	_, err = NewDirectorySource(dir, &recordingExtractor{err: boom}).Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDirectorySource_EmptyDir(t *testing.T) {
	docs, err := NewDirectorySource(t.TempDir(), &recordingExtractor{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestObjectSource_Load(t *testing.T) {
	client := &fakeObjects{objects: map[string]string{
		"documents/z.txt":       "zulu",
		"documents/a/guide.pdf": "pdf text",
		"documents/skip.jpg":    "nope",
		"other/x.txt":           "outside prefix",
	}}
	ext := &recordingExtractor{}
	src := NewObjectSource(client, "bucket", "documents/", ext)

	docs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "documents/a/guide.pdf", docs[0].SourceID)
	assert.Equal(t, "pdf text", docs[0].Text)
	assert.Equal(t, "z", docs[1].Name())
	assert.Equal(t, 1, ext.types["application/pdf"])
}

func TestObjectSource_ListError(t *testing.T) {
	boom := errors.New("denied")
	_, err := NewObjectSource(&fakeObjects{listErr: boom}, "bucket", "", &recordingExtractor{}).Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
