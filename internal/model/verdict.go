// Package model defines the shared domain types for claim verification.
package model

import (
	"math"
	"strings"
)

// ClaimStatus is the outcome of verifying a single claim.
type ClaimStatus string

const (
	StatusVerified     ClaimStatus = "verified"
	StatusUncertain    ClaimStatus = "uncertain"
	StatusHallucinated ClaimStatus = "hallucinated"
)

// ParseClaimStatus coerces a provider-reported status string into one of the
// three known statuses. Anything unrecognized (including empty) becomes
// StatusUncertain so that a misbehaving model can never invent a new state.
func ParseClaimStatus(s string) ClaimStatus {
	switch ClaimStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusVerified:
		return StatusVerified
	case StatusHallucinated:
		return StatusHallucinated
	default:
		return StatusUncertain
	}
}

// ScaleConfidence normalizes a provider confidence to the 0–100 range.
// Providers report on a 0–1 scale; values above 1 are assumed to already be
// percentages. The result is rounded and clamped into [0, 100].
func ScaleConfidence(v float64) float64 {
	if v <= 1.0 {
		v *= 100
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClaimVerdict is the final classification for one factual claim.
type ClaimVerdict struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Status      ClaimStatus `json:"status"`
	Confidence  float64     `json:"confidence"`
	SourceTitle string      `json:"source,omitempty"`
	SourceURL   string      `json:"sourceUrl,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
}

// CitationVerdict is the final classification for one citation.
// CheckingStatus is always "complete" by the time a verdict leaves the
// verifier; no pending state is ever exposed.
type CitationVerdict struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	Exists         *bool  `json:"exists"`
	URL            string `json:"url,omitempty"`
	CheckingStatus string `json:"checkingStatus"`
}

// CheckingComplete is the only CheckingStatus value ever returned.
const CheckingComplete = "complete"

// Report is the aggregate result for one verification request.
type Report struct {
	Claims       []ClaimVerdict    `json:"claims"`
	Citations    []CitationVerdict `json:"citations"`
	OverallScore int               `json:"overallScore"`
}
