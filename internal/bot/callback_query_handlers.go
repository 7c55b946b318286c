package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docsum/internal/domain"
	"docsum/internal/markdown"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callbackChatID(callback)
	if chatID == 0 {
		return b.callbackAnswer(callback, "❌ Failed.", errors.New("callback has no message"))
	}

	raw, ok := strings.CutPrefix(callback.Data, styleCallbackPrefix)
	if !ok {
		return b.callbackAnswer(callback, "❌ Unknown action.", fmt.Errorf("unknown callback data %q", callback.Data))
	}

	style := domain.ParseSummaryType(raw)
	b.setChatStyle(chatID, style)

	b.log.InfoContext(ctx, "Chat style is changed",
		"chatID", chatID,
		"userID", callback.From.ID,
		"summaryType", style)

	edit := tgbotapi.NewEditMessageText(
		chatID,
		callback.Message.MessageID,
		fmt.Sprintf(styleText, markdown.EscapeV2(styleLabel(style))),
	)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	markup := tgbotapi.NewInlineKeyboardMarkup(b.styleKeyboard...)
	edit.ReplyMarkup = &markup

	var errs []error
	if _, err := b.rateLimiter.Send(ctx, edit); err != nil {
		errs = append(errs, fmt.Errorf("edit message: %w", err))
	}

	if err := b.callbackAnswer(callback, "✅ Saved.", nil); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// callbackAnswer stops the button spinner and passes cause through.
func (b *Bot) callbackAnswer(callback *tgbotapi.CallbackQuery, text string, cause error) error {
	errs := []error{cause}

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", err))
	}

	return errors.Join(errs...)
}
