package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/markdown"
	"docsum/internal/pipeline"
)

const (
	usageText       = "📎 Send me a PDF, DOCX or TXT document to summarize\\."
	unsupportedText = "✖️ Unsupported file type\\. Please send PDF, DOCX, or TXT files\\."
	tooLargeText    = "✖️ The file is too large\\."
	noTextText      = "✖️ No text could be extracted from the file\\."
	failedText      = "❌ Failed to process file and generate summary\\."
)

var errFileTooLarge = errors.New("file is too large")

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	if message.Document != nil {
		return b.withSpinner(ctx, chatID, func() error {
			return b.handleDocument(ctx, message)
		})
	}

	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.handleStartCommand(ctx, chatID)
	case strings.HasPrefix(text, "/style"):
		return b.handleStyleCommand(ctx, chatID)
	default:
		return b.sendMessage(ctx, chatID, usageText, nil)
	}
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	doc := message.Document

	if !extractor.Supported(doc.MimeType) {
		return b.sendMessage(ctx, chatID, unsupportedText, nil)
	}

	if int64(doc.FileSize) > b.maxFileBytes {
		return b.sendMessage(ctx, chatID, tooLargeText, nil)
	}

	data, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		errs := []error{fmt.Errorf("download file: %w", err)}

		reply := failedText
		if errors.Is(err, errFileTooLarge) {
			reply = tooLargeText
		}

		if sendErr := b.sendMessage(ctx, chatID, reply, nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	summaryType := b.chatStyle(chatID)
	if caption := strings.TrimSpace(message.Caption); caption != "" {
		summaryType = domain.ParseSummaryType(caption)
	}

	summary, err := b.pipeline.Summarize(ctx, pipeline.Document{
		Name:      doc.FileName,
		MediaType: doc.MimeType,
		Data:      data,
	}, summaryType)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoText) {
			return b.sendMessage(ctx, chatID, noTextText, nil)
		}

		errs := []error{fmt.Errorf("summarize document: %w", err)}

		if sendErr := b.sendMessage(ctx, chatID, failedText, nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	return b.sendMessage(ctx, chatID, formatSummary(summary), nil)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(data)) > b.maxFileBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, b.maxFileBytes)
	}

	return data, nil
}

func formatSummary(s domain.Summary) string {
	var sb strings.Builder

	sb.WriteString(markdown.Bold(s.Title))
	sb.WriteString("\n_")
	sb.WriteString(markdown.EscapeV2(fmt.Sprintf("%s, %d words", styleLabel(s.SummaryType), s.WordCount)))
	sb.WriteString("_\n\n")
	sb.WriteString(markdown.EscapeV2(s.Content))

	return sb.String()
}
