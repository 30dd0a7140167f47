// Package pipeline fans claims and citations out to the verifier under a
// shared concurrency cap and gathers the verdicts back in input order.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/factlens/factlens/internal/model"
)

// ItemVerifier verifies a single claim or citation. Implementations must
// always return a verdict; failures degrade inside the verifier.
type ItemVerifier interface {
	VerifyClaim(ctx context.Context, claim, language string) model.ClaimVerdict
	VerifyCitation(ctx context.Context, citation string) model.CitationVerdict
}

// Config tunes the batch pipeline.
type Config struct {
	// Concurrency caps in-flight verifications across claims AND citations.
	// Kept small: every slot multiplies against the shared credential pool's
	// rate limits.
	Concurrency int
	// ClaimDelay is the pause each claim task takes right after acquiring
	// its slot, smoothing burst load on the shared credentials.
	ClaimDelay time.Duration
}

// DefaultConfig returns the pipeline tuning the original deployment used.
func DefaultConfig() Config {
	return Config{
		Concurrency: 2,
		ClaimDelay:  time.Second,
	}
}

// Pipeline runs the concurrent verification batch.
type Pipeline struct {
	verifier ItemVerifier
	cfg      Config
}

// New creates a Pipeline.
func New(v ItemVerifier, cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	return &Pipeline{verifier: v, cfg: cfg}
}

// Run verifies all claims and citations and returns the verdict slices in
// input order. It never fails as a whole and returns only once every task
// has completed; completion order is unconstrained, output order is not.
func (p *Pipeline) Run(ctx context.Context, claims, citations []string, language string) ([]model.ClaimVerdict, []model.CitationVerdict) {
	start := time.Now()
	sem := semaphore.NewWeighted(int64(p.cfg.Concurrency))

	claimOut := make([]model.ClaimVerdict, len(claims))
	citationOut := make([]model.CitationVerdict, len(citations))

	var g errgroup.Group
	for i, claim := range claims {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err == nil {
				defer sem.Release(1)
				sleepCtx(ctx, p.cfg.ClaimDelay)
			}
			claimOut[i] = p.verifier.VerifyClaim(ctx, claim, language)
			return nil
		})
	}
	for i, citation := range citations {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err == nil {
				defer sem.Release(1)
			}
			citationOut[i] = p.verifier.VerifyCitation(ctx, citation)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("pipeline: batch complete",
		zap.Int("claims", len(claims)),
		zap.Int("citations", len(citations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return claimOut, citationOut
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
