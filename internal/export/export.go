// Package export renders a summary as a downloadable file.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"docsum/internal/domain"
)

type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// File is a rendered export ready to be sent to a client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatText, FormatMarkdown, FormatPDF:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Exporter renders summaries. PDF output embeds its TrueType fonts.
type Exporter struct {
	fonts pdfFonts
}

// New returns an exporter whose PDFs use fontTTF for all text. With a nil
// font the Go fonts are used, which have no CJK glyphs.
func New(fontTTF []byte) (*Exporter, error) {
	if fontTTF == nil {
		return &Exporter{fonts: defaultPDFFonts()}, nil
	}

	if err := checkPDFFont(fontTTF); err != nil {
		return nil, err
	}

	return &Exporter{fonts: pdfFonts{regular: fontTTF, bold: fontTTF}}, nil
}

// Render uses an exporter with the default fonts.
func Render(format Format, s domain.Summary) (*File, error) {
	e := &Exporter{fonts: defaultPDFFonts()}

	return e.Render(format, s)
}

func (e *Exporter) Render(format Format, s domain.Summary) (*File, error) {
	switch format {
	case FormatText:
		return &File{
			Name:        fileName(s.ID, "txt"),
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(renderText(s)),
		}, nil
	case FormatMarkdown:
		return &File{
			Name:        fileName(s.ID, "md"),
			ContentType: "text/markdown; charset=utf-8",
			Data:        []byte(renderMarkdown(s)),
		}, nil
	case FormatPDF:
		data, err := renderPDF(s, e.fonts)
		if err != nil {
			return nil, err
		}

		return &File{
			Name:        fileName(s.ID, "pdf"),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func fileName(id, ext string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "summary." + ext
	}

	return "summary-" + b.String() + "." + ext
}

func title(s domain.Summary) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(domain.TitleFromFileName(s.DocumentName)); t != "" {
		return t
	}
	return "Summary"
}

type metaLine struct {
	label string
	value string
}

func metadata(s domain.Summary) []metaLine {
	var lines []metaLine

	if s.DocumentName != "" {
		lines = append(lines, metaLine{"Document", s.DocumentName})
	}
	if s.SummaryType != "" {
		lines = append(lines, metaLine{"Summary type", string(s.SummaryType)})
	}

	wordCount := s.WordCount
	if wordCount == 0 {
		wordCount = domain.WordCount(s.Content)
	}
	lines = append(lines, metaLine{"Word count", fmt.Sprint(wordCount)})

	if !s.CreatedAt.IsZero() {
		lines = append(lines, metaLine{"Created", s.CreatedAt.UTC().Format(time.RFC3339)})
	}

	return lines
}
