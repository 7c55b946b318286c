package summarizer

import (
	"context"
	"errors"

	"docsum/internal/domain"
)

const (
	maxOutputTokens int64   = 1000
	temperature     float64 = 0.7
)

// ErrGeneration is returned for every failure of the completion service,
// including an empty response.
var ErrGeneration = errors.New("failed to generate AI summary")

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the extracted document text, forwarded without truncation.
	Text string
	// Type selects the instruction template.
	Type domain.SummaryType
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
