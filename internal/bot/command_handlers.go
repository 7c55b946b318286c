package bot

import (
	"context"
	"fmt"

	"docsum/internal/markdown"
)

const welcomeText = `🤖 *Welcome to Docsum\!*

Send me a PDF, DOCX or TXT document and I will reply with an AI summary\.

– Put a style in the caption to choose it for one document: ` + "`STANDARD`, `EXECUTIVE`, `TECHNICAL` or `BULLET_POINTS`" + `
– Choose the default style for this chat with /style`

const styleText = `*Summary style*

Current style is %s\.

You can choose a different style below:`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, welcomeText, nil)
}

func (b *Bot) handleStyleCommand(ctx context.Context, chatID int64) error {
	text := fmt.Sprintf(styleText, markdown.EscapeV2(styleLabel(b.chatStyle(chatID))))

	return b.sendMessage(ctx, chatID, text, b.styleKeyboard)
}
