package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAISummarizer builds a new summarizer instance.
// The client never retries; a failed call fails the request.
func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Summarize issues one non-streaming request with the style template.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(maxOutputTokens),
		Temperature:     openai.Float(temperature),
		Instructions:    openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(BuildPrompt(input.Type, input.Text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: do request: %w", ErrGeneration, err)
	}

	summary := strings.TrimSpace(resp.OutputText())
	if summary == "" {
		return "", fmt.Errorf("%w: output text is missing (status = %s)", ErrGeneration, resp.Status)
	}

	return summary, nil
}
