package models

import (
	"math"
	"strings"
	"time"
)

// Document is one logical input file handed to the pipeline by a source.
type Document struct {
	SourceID string `json:"source_id"` // path or object key the text came from
	Text     string `json:"text"`
}

// Name returns the short, stable name used in record IDs and progress events.
func (d Document) Name() string {
	return SourceName(d.SourceID)
}

// RecordMetadata is stored next to every vector.
type RecordMetadata struct {
	Text            string `json:"text"`
	SourceName      string `json:"sourceName"`
	Position        int    `json:"position"`
	TotalChunks     int    `json:"totalChunks"`
	ChunkByteLength int    `json:"chunkByteLength"`
}

// IndexRecord is one chunk ready to be written to a vector index.
type IndexRecord struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"values"`
	Metadata RecordMetadata `json:"metadata"`
}

// JobRequest names the index and namespace a job writes into.
type JobRequest struct {
	IndexName string `json:"indexname"`
	Namespace string `json:"namespace"`
}

// ProgressEvent reports how far a document has been upserted.
// The job's last event has IsComplete set and an empty SourceName.
type ProgressEvent struct {
	SourceName     string `json:"filename"`
	TotalChunks    int    `json:"totalChunks"`
	ChunksUpserted int    `json:"chunksUpserted"`
	IsComplete     bool   `json:"isComplete"`
}

// Percent returns round(upserted/total*100), or 0 when there is nothing to upsert.
func (e ProgressEvent) Percent() int {
	if e.TotalChunks <= 0 {
		return 0
	}
	return int(math.Round(float64(e.ChunksUpserted) / float64(e.TotalChunks) * 100))
}

// CompletionEvent is the sentinel emitted once after every document succeeded.
func CompletionEvent() ProgressEvent {
	return ProgressEvent{IsComplete: true}
}

// FileName returns the part of a path or object key after the last '/' or '\'.
func FileName(sourceID string) string {
	if i := strings.LastIndexAny(sourceID, `/\`); i >= 0 {
		return sourceID[i+1:]
	}
	return sourceID
}

// SourceName derives a short name from a path or object key: its FileName
// without the extension.
func SourceName(sourceID string) string {
	base := FileName(sourceID)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// Namespace is a partition of a vector index that records are written into.
type Namespace struct {
	IndexName string    `json:"index_name"`
	Namespace string    `json:"namespace"`
	Dimension int       `json:"dimension"`
	CreatedAt time.Time `json:"created_at"`
}
