// Package score turns per-claim verdicts into the aggregate trust score.
package score

import "github.com/factlens/factlens/internal/model"

// Config holds the one scoring policy knob.
type Config struct {
	// EmptyScore is the overall score when no claims were found. Zero by
	// default: a text that surfaces nothing checkable should not read as
	// trustworthy. Deployments that prefer benefit-of-the-doubt set 100.
	EmptyScore int
}

// Weights per status: a verified claim counts fully, a hallucinated one not
// at all, and an uncertain one caps at 0.3 scaled by its confidence so a
// low-confidence "don't know" scores near zero.
const (
	verifiedWeight  = 1.0
	uncertainWeight = 0.3
)

// Overall computes the trust score in [0, 100] for a set of claim verdicts.
// Pure: same verdicts, same score.
func Overall(cfg Config, claims []model.ClaimVerdict) int {
	if len(claims) == 0 {
		return cfg.EmptyScore
	}

	var total float64
	for _, c := range claims {
		switch c.Status {
		case model.StatusVerified:
			total += verifiedWeight
		case model.StatusUncertain:
			total += uncertainWeight * (c.Confidence / 100.0)
		case model.StatusHallucinated:
			// Weight zero.
		}
	}
	return int(total / float64(len(claims)) * 100)
}
