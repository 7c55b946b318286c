// Package extractor turns uploaded documents into plain text.
//
// Dispatch is an exact match on the declared media type. PDF and DOCX are
// parsed from the in-memory upload; plain text is decoded as UTF-8.
package extractor

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// ParseError reports that a document of a supported kind could not be parsed.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file", e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Supported reports whether mediaType is one of the accepted media types.
func Supported(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeText:
		return true
	default:
		return false
	}
}

// Extract returns the text content of data according to its declared media type.
// The result is not trimmed; callers decide what counts as usable text.
func Extract(data []byte, mediaType string) (string, error) {
	switch mediaType {
	case MediaTypePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", &ParseError{Kind: "PDF", Err: err}
		}
		return text, nil

	case MediaTypeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", &ParseError{Kind: "DOCX", Err: err}
		}
		return text, nil

	case MediaTypeText:
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
}
