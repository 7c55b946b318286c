package bot

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docsum/internal/domain"
	"docsum/internal/pipeline"
	"docsum/internal/ratelimiter"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	updateProcessingTimeout   = 3 * time.Minute

	BotUpdateTimeout = 60
)

// DocumentSummarizer runs one document through extraction and generation.
type DocumentSummarizer interface {
	Summarize(ctx context.Context, doc pipeline.Document, summaryType domain.SummaryType) (domain.Summary, error)
}

type botAPI interface {
	ratelimiter.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api           botAPI
	rateLimiter   *ratelimiter.RateLimiter
	pipeline      DocumentSummarizer
	httpClient    *http.Client
	maxFileBytes  int64
	allowedUsers  []int64
	styleKeyboard [][]tgbotapi.InlineKeyboardButton

	// Per-chat default style, set from the /style keyboard.
	stylesMu sync.Mutex
	styles   map[int64]domain.SummaryType

	log *slog.Logger
}

func New(
	token string,
	p DocumentSummarizer,
	allowedUsers []int64,
	maxFileBytes int64,
	log *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	return newBot(api, ratelimiter.New(api, log), p, allowedUsers, maxFileBytes, log), nil
}

func newBot(
	api botAPI,
	rateLimiter *ratelimiter.RateLimiter,
	p DocumentSummarizer,
	allowedUsers []int64,
	maxFileBytes int64,
	log *slog.Logger,
) *Bot {
	return &Bot{
		api:           api,
		rateLimiter:   rateLimiter,
		pipeline:      p,
		httpClient:    &http.Client{Timeout: time.Minute},
		maxFileBytes:  maxFileBytes,
		allowedUsers:  allowedUsers,
		styleKeyboard: getStyleKeyboard(),
		styles:        make(map[int64]domain.SummaryType),
		log:           log,
	}
}

// Start long-polls for updates until ctx is done, reconnecting with backoff.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.handleUpdate(ctx, &update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(backoffSeconds) * time.Second):
		}

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		chatID, chatType := chatContext(update.Message.Chat)
		userID := update.Message.From.ID

		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", chatID,
				"username", update.Message.From.UserName,
				"chatType", chatType)

			return
		}

		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", chatID,
				"userID", userID,
				"chatType", chatType,
				"messageID", update.Message.MessageID)
		}

	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		chatID := callbackChatID(update.CallbackQuery)

		if !b.userAllowed(update.CallbackQuery.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", update.CallbackQuery.From.ID,
				"chatID", chatID,
				"username", update.CallbackQuery.From.UserName,
				"data", update.CallbackQuery.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data)
		}
	}
}

// Stop ends long polling and fails queued replies.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

// An empty allow list admits everyone.
func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func (b *Bot) chatStyle(chatID int64) domain.SummaryType {
	b.stylesMu.Lock()
	defer b.stylesMu.Unlock()

	if style, ok := b.styles[chatID]; ok {
		return style
	}
	return domain.SummaryTypeStandard
}

func (b *Bot) setChatStyle(chatID int64, style domain.SummaryType) {
	b.stylesMu.Lock()
	defer b.stylesMu.Unlock()

	b.styles[chatID] = style
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
