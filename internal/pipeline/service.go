package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/extract"
	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/model"
	"github.com/factlens/factlens/internal/score"
	"github.com/factlens/factlens/internal/store"
)

// Service runs a full verification request: extraction, the concurrent
// batch, scoring, and (optionally) run-history persistence.
type Service struct {
	chain     *genchain.Chain
	extractor *extract.Extractor
	batch     *Pipeline
	scoreCfg  score.Config
	history   store.Store // nil disables persistence
}

// NewService wires the verification flow together.
func NewService(chain *genchain.Chain, extractor *extract.Extractor, batch *Pipeline, scoreCfg score.Config, history store.Store) *Service {
	return &Service{
		chain:     chain,
		extractor: extractor,
		batch:     batch,
		scoreCfg:  scoreCfg,
		history:   history,
	}
}

// Verify runs the whole flow for one input text. The only error it returns
// is genchain.ErrNotConfigured — every other failure degrades into the
// report itself.
func (s *Service) Verify(ctx context.Context, text, contextURL string) (*model.Report, error) {
	if !s.chain.Configured() {
		return nil, genchain.ErrNotConfigured
	}

	start := time.Now()
	zap.L().Info("service: verification started",
		zap.String("text", model.PreviewText(text, 50)),
	)

	extracted := s.extractor.Extract(ctx, text, contextURL)
	claims, citations := s.batch.Run(ctx, extracted.Claims, extracted.Citations, extracted.Language)

	report := &model.Report{
		Claims:       claims,
		Citations:    citations,
		OverallScore: score.Overall(s.scoreCfg, claims),
	}

	elapsed := time.Since(start)
	zap.L().Info("service: verification complete",
		zap.Int("claims", len(report.Claims)),
		zap.Int("citations", len(report.Citations)),
		zap.Int("overall_score", report.OverallScore),
		zap.Duration("elapsed", elapsed),
	)

	if s.history != nil {
		run := &model.Run{
			ID:            uuid.New().String(),
			TextPreview:   model.PreviewText(text, 200),
			Language:      extracted.Language,
			ClaimCount:    len(report.Claims),
			CitationCount: len(report.Citations),
			OverallScore:  report.OverallScore,
			DurationMs:    elapsed.Milliseconds(),
			Report:        report,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.history.SaveRun(ctx, run); err != nil {
			// History is best-effort; the report still goes back to the caller.
			zap.L().Warn("service: failed to persist run", zap.Error(err))
		}
	}

	return report, nil
}
