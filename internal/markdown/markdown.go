// Package markdown formats text for Telegram's MarkdownV2 parse mode.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's limit for one text message.
const MaxMessageLength = 4096

// See https://core.telegram.org/bots/api#markdownv2-style.
const specialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

// EscapeV2 escapes every MarkdownV2 special character in input.
func EscapeV2(input string) string {
	n := 0
	for i := range len(input) {
		if isSpecial(input[i]) {
			n++
		}
	}
	if n == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + n)

	for i := range len(input) {
		if isSpecial(input[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(input[i])
	}

	return b.String()
}

// Bold escapes input and wraps it in bold markers.
func Bold(input string) string {
	return "*" + EscapeV2(input) + "*"
}

func isSpecial(c byte) bool {
	return strings.IndexByte(specialChars, c) >= 0
}

// Split breaks escaped text into chunks of at most limit runes, preferring
// line breaks in the second half of a chunk and never separating an escape
// backslash from the character it escapes.
func Split(text string, limit int) []string {
	if limit < 2 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)

	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}

		if trailingBackslashes(runes[:cut])%2 == 1 {
			cut--
		}

		if chunk := strings.TrimRight(string(runes[:cut]), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}

	if rest := strings.TrimLeft(string(runes), "\n"); rest != "" {
		chunks = append(chunks, rest)
	}

	return chunks
}

func trailingBackslashes(runes []rune) int {
	n := 0
	for i := len(runes) - 1; i >= 0 && runes[i] == '\\'; i-- {
		n++
	}
	return n
}
