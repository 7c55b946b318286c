package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docsum/internal/auth"
	"docsum/internal/domain"
)

const (
	msgInvalidSummary  = "Invalid summary data"
	msgHistoryFailed   = "Failed to fetch summary history"
	msgSaveFailed      = "Failed to save summary to history"
	msgDeleteFailed    = "Failed to delete summary"
	msgSummaryNotFound = "Summary not found"
)

// summaryPayload distinguishes absent fields from zero values.
type summaryPayload struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	SummaryType  string     `json:"summaryType"`
	WordCount    *int       `json:"wordCount"`
	CreatedAt    *time.Time `json:"createdAt"`
	DocumentName string     `json:"documentName"`
}

// decodeSummary reads a Summary body, filling absent ID, timestamp and word
// count. The type is normalised to a known one. ok is false when the body is
// not a summary with content.
func decodeSummary(w http.ResponseWriter, r *http.Request, now time.Time) (domain.Summary, bool) {
	var p summaryPayload

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&p); err != nil {
		return domain.Summary{}, false
	}

	if p.Content == "" {
		return domain.Summary{}, false
	}

	s := domain.Summary{
		ID:           strings.TrimSpace(p.ID),
		Title:        p.Title,
		Content:      p.Content,
		SummaryType:  domain.ParseSummaryType(p.SummaryType),
		DocumentName: p.DocumentName,
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if p.WordCount != nil {
		s.WordCount = *p.WordCount
	} else {
		s.WordCount = domain.WordCount(s.Content)
	}

	if p.CreatedAt != nil {
		s.CreatedAt = p.CreatedAt.UTC()
	} else {
		s.CreatedAt = now.UTC().Truncate(time.Second)
	}

	return s, true
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	summaries, err := s.history.ListSummaries(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list summaries",
			"error", err,
			"userID", userID)

		s.writeError(w, r, http.StatusInternalServerError, msgHistoryFailed)
		return
	}

	if summaries == nil {
		summaries = []domain.Summary{}
	}

	s.writeJSON(w, r, http.StatusOK, summaries)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	summary, ok := decodeSummary(w, r, time.Now())
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, msgInvalidSummary)
		return
	}

	if err := s.history.SaveSummary(ctx, userID, summary); err != nil {
		s.log.ErrorContext(ctx, "Failed to save summary",
			"error", err,
			"userID", userID,
			"summaryID", summary.ID)

		s.writeError(w, r, http.StatusInternalServerError, msgSaveFailed)
		return
	}

	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	id := chi.URLParam(r, "id")

	deleted, err := s.history.DeleteSummary(ctx, userID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete summary",
			"error", err,
			"userID", userID,
			"summaryID", id)

		s.writeError(w, r, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	if !deleted {
		s.writeError(w, r, http.StatusNotFound, msgSummaryNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
