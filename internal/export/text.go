package export

import (
	"strings"

	"docsum/internal/domain"

	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var urlRe = xurls.Strict()

func renderText(s domain.Summary) string {
	var b strings.Builder

	b.WriteString(title(s))
	b.WriteByte('\n')
	for _, m := range metadata(s) {
		b.WriteString(m.label)
		b.WriteString(": ")
		b.WriteString(m.value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(s.Content))
	b.WriteByte('\n')

	return b.String()
}

func renderMarkdown(s domain.Summary) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(title(s))
	b.WriteString("\n\n")
	for _, m := range metadata(s) {
		b.WriteString("- **")
		b.WriteString(m.label)
		b.WriteString(":** ")
		b.WriteString(m.value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(autolink(strings.TrimSpace(s.Content)))
	b.WriteByte('\n')

	return b.String()
}

// autolink wraps bare URLs in angle brackets.
// URLs already following '<' or '(' are left alone.
func autolink(text string) string {
	matches := urlRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 2*len(matches))

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])

		if start > 0 && (text[start-1] == '<' || text[start-1] == '(') {
			b.WriteString(text[start:end])
		} else {
			b.WriteByte('<')
			b.WriteString(text[start:end])
			b.WriteByte('>')
		}

		last = end
	}
	b.WriteString(text[last:])

	return b.String()
}
