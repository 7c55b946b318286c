// Package pipeline turns an uploaded document into a Summary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/summarizer"
)

// ErrNoText is returned when a supported document yields only whitespace.
var ErrNoText = errors.New("no text could be extracted from the file")

// Document is one uploaded file.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}

type Pipeline struct {
	summarizer summarizer.Summarizer
	timeout    time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// New returns a pipeline that bounds each completion call by timeout.
// A non-positive timeout leaves the caller's context untouched.
func New(s summarizer.Summarizer, timeout time.Duration, log *slog.Logger) *Pipeline {
	return &Pipeline{
		summarizer: s,
		timeout:    timeout,
		now:        time.Now,
		log:        log,
	}
}

func (p *Pipeline) Summarize(
	ctx context.Context,
	doc Document,
	summaryType domain.SummaryType,
) (domain.Summary, error) {
	text, err := extractor.Extract(doc.Data, doc.MediaType)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("extract text: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return domain.Summary{}, ErrNoText
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := p.now()

	content, err := p.summarizer.Summarize(ctx, summarizer.Input{
		Text: text,
		Type: summaryType,
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summarize text: %w", err)
	}

	p.log.InfoContext(ctx, "Document is summarized",
		"documentName", doc.Name,
		"mediaType", doc.MediaType,
		"summaryType", summaryType,
		"textLength", len(text),
		"durationMs", p.now().Sub(start).Milliseconds())

	return domain.Summary{
		ID:           uuid.NewString(),
		Title:        domain.TitleFromFileName(doc.Name),
		Content:      content,
		SummaryType:  summaryType,
		WordCount:    domain.WordCount(content),
		CreatedAt:    p.now().UTC().Truncate(time.Second),
		DocumentName: doc.Name,
	}, nil
}
