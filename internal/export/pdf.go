package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"docsum/internal/domain"
)

const (
	pdfFontFamily = "docsum"
	pdfMargin     = 72

	pdfTitleSize   = 16
	pdfTitleHeight = 20
	pdfMetaSize    = 9
	pdfMetaHeight  = 12
	pdfBodySize    = 11
	pdfBodyHeight  = 14
)

// pdfFonts holds the TrueType faces embedded into rendered PDFs.
type pdfFonts struct {
	regular []byte
	bold    []byte
}

// defaultPDFFonts are the Go fonts, which cover Latin, Greek and Cyrillic.
func defaultPDFFonts() pdfFonts {
	return pdfFonts{regular: goregular.TTF, bold: gobold.TTF}
}

// renderPDF lays the summary out on Letter pages. Lines are wrapped by
// measured glyph widths and pages break automatically.
func renderPDF(s domain.Summary, fonts pdfFonts) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.AddUTF8FontFromBytes(pdfFontFamily, "", fonts.regular)
	doc.AddUTF8FontFromBytes(pdfFontFamily, "B", fonts.bold)

	doc.SetTitle(title(s), true)
	doc.SetProducer("docsum", true)
	if !s.CreatedAt.IsZero() {
		doc.SetCreationDate(s.CreatedAt.UTC())
		doc.SetModificationDate(s.CreatedAt.UTC())
	}

	doc.AddPage()

	doc.SetFont(pdfFontFamily, "B", pdfTitleSize)
	doc.MultiCell(0, pdfTitleHeight, pdfText(title(s)), "", "L", false)
	doc.Ln(pdfMetaHeight / 2)

	doc.SetFont(pdfFontFamily, "", pdfMetaSize)
	doc.SetTextColor(90, 90, 90)
	for _, m := range metadata(s) {
		doc.MultiCell(0, pdfMetaHeight, pdfText(m.label+": "+m.value), "", "L", false)
	}
	doc.Ln(pdfBodyHeight)

	doc.SetFont(pdfFontFamily, "", pdfBodySize)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, pdfBodyHeight, pdfText(strings.TrimSpace(s.Content)), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// pdfText expands tabs and drops control characters other than newlines.
func pdfText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r == '\n':
			return r
		case r < 0x20, r == 0x7F:
			return -1
		default:
			return r
		}
	}, text)
}

// checkPDFFont reports whether ttf can be embedded. A font that fails to
// parse is skipped by the library, so selecting it surfaces the error.
func checkPDFFont(ttf []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load PDF font: %v", r)
		}
	}()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.AddUTF8FontFromBytes(pdfFontFamily, "", ttf)
	doc.SetFont(pdfFontFamily, "", pdfBodySize)

	if err = doc.Error(); err != nil {
		return fmt.Errorf("load PDF font: %w", err)
	}

	return nil
}
