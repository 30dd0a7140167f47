// Package genchain implements the two-tier generation fallback chain:
// the primary Gemini provider, authenticated through the rotating credential
// pool, with a one-shot secondary provider behind it.
package genchain

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/keypool"
	"github.com/factlens/factlens/internal/resilience"
	"github.com/factlens/factlens/pkg/gemini"
)

// ErrNotConfigured is returned when no generation credentials exist at all.
// It is the one failure surfaced to the caller instead of degraded.
var ErrNotConfigured = eris.New("genchain: no generation provider configured")

// Generator produces text for a prompt. Secondary providers implement it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RotatedError reports that a generation attempt hit a rate limit but
// credential rotation found a fresh key; the caller should retry the same
// prompt immediately. The retry loop lives in the verifier, which knows the
// attempt budget — the chain never loops.
type RotatedError struct {
	Err error
}

func (e *RotatedError) Error() string { return e.Err.Error() }

func (e *RotatedError) Unwrap() error { return e.Err }

// IsRotated reports whether err carries a successful-rotation marker.
func IsRotated(err error) bool {
	var re *RotatedError
	return eris.As(err, &re)
}

// Chain is the generation fallback chain.
type Chain struct {
	pool      *keypool.Pool
	primary   gemini.Client
	secondary Generator // nil when unconfigured
}

// New creates a Chain. secondary may be nil.
func New(pool *keypool.Pool, primary gemini.Client, secondary Generator) *Chain {
	return &Chain{pool: pool, primary: primary, secondary: secondary}
}

// Rotate advances the credential pool; exposed for callers that classify
// failures themselves.
func (c *Chain) Rotate() bool { return c.pool.Rotate() }

// Configured reports whether any generation tier exists at all. When false,
// callers surface the configuration error instead of degrading.
func (c *Chain) Configured() bool {
	return !c.pool.Empty() || c.secondary != nil
}

// Generate issues one generation attempt. An empty response body is a
// failure: it cannot be parsed downstream.
//
// On a rate-limited failure it rotates credentials; if rotation succeeds it
// returns a RotatedError so the caller retries, and if rotation fails it
// falls through to the secondary provider once. Only when both tiers are
// exhausted does the original failure escalate.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	cred, ok := c.pool.Active()
	if !ok {
		if c.secondary == nil {
			return "", ErrNotConfigured
		}
		return c.fallback(ctx, prompt, ErrNotConfigured)
	}

	text, err := c.primary.GenerateContent(ctx, cred.Key, prompt)
	if err == nil {
		if strings.TrimSpace(text) == "" {
			return "", eris.New("genchain: empty response from primary provider")
		}
		return text, nil
	}

	if !resilience.IsRateLimited(err) {
		return "", err
	}

	zap.L().Warn("genchain: primary provider rate limited",
		zap.String("credential", cred.Label()),
		zap.Error(err),
	)

	if c.pool.Rotate() {
		return "", &RotatedError{Err: err}
	}

	if c.secondary != nil {
		return c.fallback(ctx, prompt, err)
	}
	return "", err
}

// fallback issues the prompt to the secondary provider once. If it fails,
// the original primary failure escalates.
func (c *Chain) fallback(ctx context.Context, prompt string, cause error) (string, error) {
	zap.L().Info("genchain: falling back to secondary provider")
	text, err := c.secondary.Generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("genchain: secondary provider failed", zap.Error(err))
		return "", cause
	}
	if strings.TrimSpace(text) == "" {
		zap.L().Warn("genchain: secondary provider returned empty response")
		return "", cause
	}
	return text, nil
}
