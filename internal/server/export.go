package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"docsum/internal/export"
)

const msgUnsupportedFormat = "Unsupported export format"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, msgUnsupportedFormat)
		return
	}

	summary, ok := decodeSummary(w, r, time.Now())
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, msgInvalidSummary)
		return
	}

	file, err := s.exporter.Render(format, summary)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to render export",
			"error", err,
			"format", format,
			"summaryID", summary.ID)

		s.writeError(w, r, http.StatusInternalServerError, "Failed to export summary")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(file.Data); err != nil {
		s.log.WarnContext(ctx, "Failed to write export",
			"error", err,
			"format", format,
			"summaryID", summary.ID)
	}
}
