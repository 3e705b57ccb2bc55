package ingestion_engine

import (
	"context"
	"sync"
	"time"

	"github.com/markdave123-py/contexta-ingest/internal/models"
)

// fakeEmbedder returns a 3-dimensional vector per text unless embedTextsFunc is set.
type fakeEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu    sync.Mutex
	calls [][]string
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()

	if f.embedTextsFunc != nil {
		return f.embedTextsFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 2}
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type upsertCall struct {
	index, namespace string
	records          []models.IndexRecord
}

// fakeIndex records every upsert attempt. upsertFunc decides the outcome of
// attempt n (1-based); nil means success.
type fakeIndex struct {
	upsertFunc func(attempt int, records []models.IndexRecord) error

	mu       sync.Mutex
	attempts int
	written  []upsertCall
}

func (f *fakeIndex) Upsert(ctx context.Context, indexName, namespace string, records []models.IndexRecord) error {
	f.mu.Lock()
	f.attempts++
	attempt := f.attempts
	f.mu.Unlock()

	if f.upsertFunc != nil {
		if err := f.upsertFunc(attempt, records); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.written = append(f.written, upsertCall{index: indexName, namespace: namespace, records: records})
	f.mu.Unlock()
	return nil
}

func (f *fakeIndex) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.written {
		for _, r := range c.records {
			out = append(out, r.ID)
		}
	}
	return out
}

func (f *fakeIndex) positions() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, c := range f.written {
		for _, r := range c.records {
			out = append(out, r.Metadata.Position)
		}
	}
	return out
}

// eventLog collects progress events.
type eventLog struct {
	events []models.ProgressEvent
}

func (l *eventLog) record(e models.ProgressEvent) {
	l.events = append(l.events, e)
}

func testConfig() IngestConfig {
	cfg := DefaultIngestConfig()
	cfg.BatchPause = 0
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

var testRequest = models.JobRequest{IndexName: "docs", Namespace: "team-a"}
