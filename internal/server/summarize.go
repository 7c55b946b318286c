package server

import (
	"errors"
	"io"
	"net/http"

	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/pipeline"
)

const (
	msgNoFile          = "No file provided"
	msgUnsupportedType = "Unsupported file type. Please upload PDF, DOCX, or TXT files."
	msgNoText          = "No text could be extracted from the file"
	msgInvalidUpload   = "Invalid upload"
	msgFileTooLarge    = "File is too large"
	msgSummarizeFailed = "Failed to process file and generate summary"
)

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, r, http.StatusBadRequest, msgFileTooLarge)
			return
		}

		s.writeError(w, r, http.StatusBadRequest, msgInvalidUpload)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.log.WarnContext(ctx, "Failed to remove multipart files",
				"error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if !extractor.Supported(mediaType) {
		s.writeError(w, r, http.StatusBadRequest, msgUnsupportedType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to read uploaded file",
			"error", err,
			"documentName", header.Filename)

		s.writeError(w, r, http.StatusInternalServerError, msgSummarizeFailed)
		return
	}

	summaryType := domain.ParseSummaryType(r.FormValue("summaryType"))

	summary, err := s.pipeline.Summarize(ctx, pipeline.Document{
		Name:      header.Filename,
		MediaType: mediaType,
		Data:      data,
	}, summaryType)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoText):
			s.writeError(w, r, http.StatusBadRequest, msgNoText)
		case errors.Is(err, extractor.ErrUnsupportedType):
			s.writeError(w, r, http.StatusBadRequest, msgUnsupportedType)
		default:
			s.log.ErrorContext(ctx, "Failed to summarize document",
				"error", err,
				"documentName", header.Filename,
				"mediaType", mediaType,
				"summaryType", summaryType,
				"size", len(data))

			s.writeError(w, r, http.StatusInternalServerError, msgSummarizeFailed)
		}
		return
	}

	s.writeJSON(w, r, http.StatusOK, summary)
}
