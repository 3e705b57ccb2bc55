package ingestion_engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/contexta-ingest/internal/models"
)

func newTestDocumentProcessor(t *testing.T, emb *fakeEmbedder, idx *fakeIndex, cfg IngestConfig) *DocumentProcessor {
	t.Helper()
	dp, err := NewDocumentProcessor(NewBatchProcessor(emb, idx, cfg), cfg)
	require.NoError(t, err)
	return dp
}

func TestDocumentProcessor_PositionsAndCounters(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 120
	cfg.ChunkOverlap = 20
	cfg.BatchSize = 3
	idx := &fakeIndex{}
	dp := newTestDocumentProcessor(t, &fakeEmbedder{}, idx, cfg)
	var log eventLog

	doc := models.Document{SourceID: "/srv/documents/guide.md", Text: sampleText(400)}
	res, err := dp.Process(context.Background(), testRequest, doc, log.record)
	require.NoError(t, err)

	assert.Equal(t, "guide", res.SourceName)
	require.Greater(t, res.TotalChunks, 3)
	assert.Equal(t, res.TotalChunks, res.ChunksUpserted)

	positions := idx.positions()
	require.Len(t, positions, res.TotalChunks)
	for i, p := range positions {
		assert.Equal(t, i+1, p, "positions start at 1 and increase by one")
	}

	require.Len(t, log.events, (res.TotalChunks+2)/3)
	prev, deltas := 0, 0
	for _, e := range log.events {
		assert.Equal(t, "guide", e.SourceName)
		assert.Equal(t, res.TotalChunks, e.TotalChunks)
		assert.False(t, e.IsComplete)
		assert.Greater(t, e.ChunksUpserted, prev)
		deltas += e.ChunksUpserted - prev
		prev = e.ChunksUpserted
	}
	assert.Equal(t, res.TotalChunks, deltas)
}

func TestDocumentProcessor_EmptyDocument(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := &fakeIndex{}
	dp := newTestDocumentProcessor(t, emb, idx, testConfig())
	var log eventLog

	res, err := dp.Process(context.Background(), testRequest, models.Document{SourceID: "empty.txt", Text: "  \n"}, log.record)
	require.NoError(t, err)
	assert.Equal(t, DocumentResult{SourceName: "empty"}, res)
	assert.Zero(t, emb.callCount())
	assert.Empty(t, log.events)
}

func TestDocumentProcessor_PausesBetweenBatchesOnly(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 50
	cfg.ChunkOverlap = 0
	cfg.BatchSize = 1
	cfg.BatchPause = 30 * time.Millisecond
	idx := &fakeIndex{}
	dp := newTestDocumentProcessor(t, &fakeEmbedder{}, idx, cfg)

	// Three chunks: two pauses.
	text := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" +
		"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" +
		"cccccccccccccccccccccccccccccccccccccccccccccccccc"
	started := time.Now()
	res, err := dp.Process(context.Background(), testRequest, models.Document{SourceID: "abc.txt", Text: text}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalChunks)
	assert.GreaterOrEqual(t, time.Since(started), 60*time.Millisecond)

	// A single batch never waits.
	cfg.BatchPause = 5 * time.Second
	dp = newTestDocumentProcessor(t, &fakeEmbedder{}, &fakeIndex{}, cfg)
	started = time.Now()
	_, err = dp.Process(context.Background(), testRequest, models.Document{SourceID: "one.txt", Text: "short"}, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

func TestDocumentProcessor_PauseHonoursContext(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 10
	cfg.ChunkOverlap = 0
	cfg.BatchSize = 1
	cfg.BatchPause = time.Minute
	dp := newTestDocumentProcessor(t, &fakeEmbedder{}, &fakeIndex{}, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := dp.Process(ctx, testRequest, models.Document{SourceID: "a", Text: "0123456789abcdefghij"}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDocumentProcessor_PropagatesBatchErrors(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 10
	cfg.ChunkOverlap = 0
	cfg.BatchSize = 1
	backendErr := errors.New("index unavailable")
	idx := &fakeIndex{upsertFunc: func(attempt int, _ []models.IndexRecord) error {
		if attempt > 1 {
			return backendErr
		}
		return nil
	}}
	dp := newTestDocumentProcessor(t, &fakeEmbedder{}, idx, cfg)
	var log eventLog

	res, err := dp.Process(context.Background(), testRequest, models.Document{SourceID: "a", Text: "0123456789abcdefghij0123456789"}, log.record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpsertFailed)
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 3, res.TotalChunks)
	assert.Equal(t, 1, res.ChunksUpserted)
	assert.Equal(t, 4, idx.attempts, "one success, then three failed attempts on the second batch")
	assert.Len(t, log.events, 1)
}
