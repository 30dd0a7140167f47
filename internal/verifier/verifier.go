// Package verifier runs the per-claim and per-citation retry state machine.
//
// Each invocation performs one search, caches the evidence, then retries
// verdict generation under a fixed attempt budget, rotating credentials and
// falling back to the secondary provider via the generation chain. It always
// produces a verdict: when the budget is spent the result degrades to an
// uncertain verdict naming the failure, never an error.
package verifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/model"
	"github.com/factlens/factlens/internal/resilience"
)

// Searcher is the search fallback chain as the verifier sees it.
type Searcher interface {
	Search(ctx context.Context, query string) model.SearchResult
}

// Config holds the retry tuning knobs. The defaults mirror the provider
// rate-limit policy the service was tuned against; all are configurable
// because the right values depend on the deployment's real quotas.
type Config struct {
	// MaxAttempts is the verdict-generation attempt budget per item.
	MaxAttempts int
	// RotationDelay is the pause after a successful credential rotation.
	RotationDelay time.Duration
	// BackoffStep is multiplied by the attempt number when every credential
	// and the secondary provider are exhausted.
	BackoffStep time.Duration
	// MaxQueryLen caps the model-generated search query; longer candidates
	// fall back to the raw claim text.
	MaxQueryLen int
}

// DefaultConfig returns the tuning the original deployment used.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		RotationDelay: 2 * time.Second,
		BackoffStep:   10 * time.Second,
		MaxQueryLen:   150,
	}
}

// Verifier verifies individual claims and citations.
type Verifier struct {
	gen    genchain.Generator
	search Searcher
	cfg    Config
}

// New creates a Verifier on top of the generation and search chains.
func New(gen genchain.Generator, search Searcher, cfg Config) *Verifier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxQueryLen <= 0 {
		cfg.MaxQueryLen = 150
	}
	return &Verifier{gen: gen, search: search, cfg: cfg}
}

// VerifyClaim verifies one claim and always returns a verdict.
func (v *Verifier) VerifyClaim(ctx context.Context, claim, language string) model.ClaimVerdict {
	query := v.searchQuery(ctx, claim)

	var evidence *model.SearchResult
	var lastErr error

	for attempt := 1; attempt <= v.cfg.MaxAttempts; attempt++ {
		// Evidence does not change across retries; search once and cache.
		if evidence == nil {
			r := v.search.Search(ctx, query)
			evidence = &r
		}

		prompt := claimVerdictPrompt(claim, evidenceText(*evidence), language)
		raw, err := v.gen.Generate(ctx, prompt)
		if err == nil {
			payload, perr := parseClaimPayload(raw)
			if perr == nil {
				confidence := 0.5
				if payload.Confidence != nil {
					confidence = *payload.Confidence
				}
				return model.ClaimVerdict{
					ID:          uuid.New().String(),
					Text:        claim,
					Status:      model.ParseClaimStatus(*payload.Status),
					Confidence:  model.ScaleConfidence(confidence),
					SourceTitle: evidence.Title,
					SourceURL:   evidence.URL,
					Explanation: payload.Explanation,
				}
			}
			// Unparseable output is a generation failure for retry purposes.
			err = perr
		}
		lastErr = err

		if attempt == v.cfg.MaxAttempts {
			break
		}
		v.waitBeforeRetry(ctx, attempt, err, claim)
	}

	zap.L().Warn("verifier: claim attempts exhausted, returning degraded verdict",
		zap.String("claim", model.PreviewText(claim, 50)),
		zap.Error(lastErr),
	)
	verdict := model.ClaimVerdict{
		ID:          uuid.New().String(),
		Text:        claim,
		Status:      model.StatusUncertain,
		Confidence:  50,
		Explanation: fmt.Sprintf("Verification failed: %s", failureMessage(lastErr)),
	}
	if evidence != nil {
		verdict.SourceTitle = evidence.Title
		verdict.SourceURL = evidence.URL
	}
	return verdict
}

// VerifyCitation verifies one citation and always returns a verdict with
// CheckingStatus complete.
func (v *Verifier) VerifyCitation(ctx context.Context, citation string) model.CitationVerdict {
	var evidence *model.SearchResult
	var lastErr error

	for attempt := 1; attempt <= v.cfg.MaxAttempts; attempt++ {
		if evidence == nil {
			r := v.search.Search(ctx, citation)
			evidence = &r
		}

		prompt := citationVerdictPrompt(citation, evidence.Title)
		raw, err := v.gen.Generate(ctx, prompt)
		if err == nil {
			payload, perr := parseCitationPayload(raw)
			if perr == nil {
				exists := *payload.IsReal || !evidence.Empty()
				return model.CitationVerdict{
					ID:             uuid.New().String(),
					Text:           citation,
					Exists:         &exists,
					URL:            evidence.URL,
					CheckingStatus: model.CheckingComplete,
				}
			}
			err = perr
		}
		lastErr = err

		if attempt == v.cfg.MaxAttempts {
			break
		}
		v.waitBeforeRetry(ctx, attempt, err, citation)
	}

	zap.L().Warn("verifier: citation attempts exhausted, returning degraded verdict",
		zap.String("citation", model.PreviewText(citation, 50)),
		zap.Error(lastErr),
	)
	exists := evidence != nil && !evidence.Empty()
	verdict := model.CitationVerdict{
		ID:             uuid.New().String(),
		Text:           citation,
		Exists:         &exists,
		CheckingStatus: model.CheckingComplete,
	}
	if evidence != nil {
		verdict.URL = evidence.URL
	}
	return verdict
}

// searchQuery asks the generation chain for a query tailored to the claim.
// Best effort: any failure or an implausible candidate falls back to the
// raw claim text and never aborts the verification.
func (v *Verifier) searchQuery(ctx context.Context, claim string) string {
	raw, err := v.gen.Generate(ctx, searchQueryPrompt(claim))
	if err != nil {
		zap.L().Debug("verifier: search query generation failed, using claim text",
			zap.Error(err),
		)
		return claim
	}
	candidate := trimQuery(raw)
	if candidate == "" || len(candidate) >= v.cfg.MaxQueryLen {
		return claim
	}
	return candidate
}

// waitBeforeRetry picks the delay for the next attempt: a short fixed pause
// after a successful rotation, a growing backoff when every tier is
// exhausted, and an immediate retry for other transient failures.
func (v *Verifier) waitBeforeRetry(ctx context.Context, attempt int, err error, item string) {
	switch {
	case genchain.IsRotated(err):
		zap.L().Info("verifier: retrying with rotated credential",
			zap.String("item", model.PreviewText(item, 30)),
			zap.Int("attempt", attempt),
		)
		sleepCtx(ctx, v.cfg.RotationDelay)
	case resilience.IsRateLimited(err):
		delay := time.Duration(attempt) * v.cfg.BackoffStep
		zap.L().Warn("verifier: all generation tiers exhausted, backing off",
			zap.String("item", model.PreviewText(item, 30)),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		sleepCtx(ctx, delay)
	default:
		// Transient failure: retry immediately.
	}
}

func evidenceText(r model.SearchResult) string {
	if r.Empty() {
		return noEvidence
	}
	return fmt.Sprintf("Source: %s - %s (URL: %s)", r.Title, r.Body, r.URL)
}

func failureMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	if resilience.IsRateLimited(err) {
		return "rate limit reached; wait a minute or configure more API keys"
	}
	return err.Error()
}

func trimQuery(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
