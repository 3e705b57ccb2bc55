package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/contexta-ingest/internal/core/ingestion_engine"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

type fileListLine struct {
	FileList []string `json:"fileList"`
}

type progressLine struct {
	Filename       string `json:"filename"`
	TotalChunks    int    `json:"totalChunks"`
	ChunksUpserted int    `json:"chunksUpserted"`
	IsComplete     bool   `json:"isComplete"`
	Progress       int    `json:"progress"`
}

type errorLine struct {
	Error string `json:"error"`
}

func newProgressLine(ev models.ProgressEvent) progressLine {
	return progressLine{
		Filename:       ev.SourceName,
		TotalChunks:    ev.TotalChunks,
		ChunksUpserted: ev.ChunksUpserted,
		IsComplete:     ev.IsComplete,
		Progress:       ev.Percent(),
	}
}

type IngestHandler struct {
	jobs JobService
}

func NewIngestHandler(jobs JobService) *IngestHandler {
	return &IngestHandler{jobs: jobs}
}

// UpdateDatabase starts a job and streams its progress as newline-delimited JSON.
func (h *IngestHandler) UpdateDatabase(w http.ResponseWriter, r *http.Request) {
	var req models.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorLine{Error: "invalid request body"})
		return
	}

	stream, err := h.jobs.Start(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ingestion_engine.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorLine{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	gone := false

	// The job keeps running if the client disconnects, so the stream is
	// always drained even once writes start failing.
	for msg := range stream {
		if gone {
			continue
		}
		var line any
		switch {
		case msg.Err != nil:
			slog.Error("ingestion job failed", "index", req.IndexName, "namespace", req.Namespace, "err", msg.Err)
			line = errorLine{Error: msg.Err.Error()}
		case msg.Event != nil:
			line = newProgressLine(*msg.Event)
		default:
			line = fileListLine{FileList: msg.FileList}
		}
		if err := enc.Encode(line); err != nil {
			slog.Warn("client went away, draining job stream", "err", err)
			gone = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
