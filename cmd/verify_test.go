package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/factlens/factlens/internal/model"
)

func TestFormatReport(t *testing.T) {
	exists := false
	report := &model.Report{
		OverallScore: 43,
		Claims: []model.ClaimVerdict{
			{
				Text:        "The Eiffel Tower is in Paris",
				Status:      model.StatusVerified,
				Confidence:  95,
				Explanation: "Well documented.",
				SourceURL:   "https://example.com/eiffel",
			},
			{
				Text:       "The Moon is made of cheese",
				Status:     model.StatusHallucinated,
				Confidence: 87.5,
			},
		},
		Citations: []model.CitationVerdict{
			{Text: "Chen 2003", Exists: &exists, CheckingStatus: model.CheckingComplete},
		},
	}

	var buf bytes.Buffer
	formatReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Overall score: 43/100")
	assert.Contains(t, out, "1. [verified 95%] The Eiffel Tower is in Paris")
	assert.Contains(t, out, "source: https://example.com/eiffel")
	assert.Contains(t, out, "2. [hallucinated 88%] The Moon is made of cheese")
	assert.Contains(t, out, "1. [not found] Chen 2003")
}

func TestFormatReport_NoClaimsOrCitations(t *testing.T) {
	var buf bytes.Buffer
	formatReport(&buf, &model.Report{OverallScore: 0})

	assert.Equal(t, "Overall score: 0/100\n", buf.String())
}
