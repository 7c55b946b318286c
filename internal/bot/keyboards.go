package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docsum/internal/domain"
)

const styleCallbackPrefix = "style_"

var styleLabels = []struct {
	style domain.SummaryType
	label string
}{
	{domain.SummaryTypeStandard, "📄 Standard"},
	{domain.SummaryTypeExecutive, "💼 Executive"},
	{domain.SummaryTypeTechnical, "🛠 Technical"},
	{domain.SummaryTypeBulletPoints, "• Bullet points"},
}

func getStyleKeyboard() [][]tgbotapi.InlineKeyboardButton {
	var keyboard [][]tgbotapi.InlineKeyboardButton

	for i := 0; i < len(styleLabels); i += 2 {
		var row []tgbotapi.InlineKeyboardButton

		for _, s := range styleLabels[i:min(i+2, len(styleLabels))] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(s.label, styleCallbackPrefix+string(s.style)))
		}

		keyboard = append(keyboard, row)
	}

	return keyboard
}

func styleLabel(style domain.SummaryType) string {
	for _, s := range styleLabels {
		if s.style == style {
			return s.label
		}
	}
	return string(style)
}
