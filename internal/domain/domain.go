package domain

import (
	"path"
	"strings"
	"time"
)

type SummaryType string

const (
	SummaryTypeStandard     SummaryType = "STANDARD"
	SummaryTypeExecutive    SummaryType = "EXECUTIVE"
	SummaryTypeTechnical    SummaryType = "TECHNICAL"
	SummaryTypeBulletPoints SummaryType = "BULLET_POINTS"
)

// ParseSummaryType maps a selector to a known summary type.
// Unknown or empty values fall back to STANDARD.
func ParseSummaryType(raw string) SummaryType {
	switch t := SummaryType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case SummaryTypeExecutive, SummaryTypeTechnical, SummaryTypeBulletPoints:
		return t
	default:
		return SummaryTypeStandard
	}
}

type Summary struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	SummaryType  SummaryType `json:"summaryType"`
	WordCount    int         `json:"wordCount"`
	CreatedAt    time.Time   `json:"createdAt"`
	DocumentName string      `json:"documentName"`
}

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Provider     string
	CreatedAt    time.Time
}

// WordCount counts whitespace-delimited tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// TitleFromFileName strips the final extension from a document name.
func TitleFromFileName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
