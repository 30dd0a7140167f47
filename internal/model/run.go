package model

import (
	"time"
	"unicode/utf8"
)

// Run records one completed verification request for the history store.
type Run struct {
	ID            string    `json:"id"`
	TextPreview   string    `json:"text_preview"`
	Language      string    `json:"language"`
	ClaimCount    int       `json:"claim_count"`
	CitationCount int       `json:"citation_count"`
	OverallScore  int       `json:"overall_score"`
	DurationMs    int64     `json:"duration_ms"`
	Report        *Report   `json:"report,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PreviewText truncates input text for storage and log lines. The cut lands
// on a rune boundary so non-English previews stay valid UTF-8.
func PreviewText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}
