package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/contexta-ingest/internal/models"
	"github.com/markdave123-py/contexta-ingest/internal/services"
)

// JobService is what the HTTP layer needs from services.IngestService.
type JobService interface {
	Start(ctx context.Context, req models.JobRequest) (<-chan services.StreamMessage, error)
	ListDocuments(ctx context.Context) ([]string, error)
}

type DocumentHandler struct {
	jobs JobService
}

func NewDocumentHandler(jobs JobService) *DocumentHandler {
	return &DocumentHandler{jobs: jobs}
}

// GetDocuments lists the source names the next job would ingest.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := h.jobs.ListDocuments(r.Context())
	if err != nil {
		slog.Error("listing documents failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorLine{Error: err.Error()})
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": names})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
