// Package searchchain implements the two-tier evidence search: a
// high-quality provider tried first, a general-purpose provider behind it.
// The chain never fails — when every tier comes up empty the caller gets an
// empty SearchResult, which is valid input to verdict generation.
package searchchain

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/model"
	"github.com/factlens/factlens/internal/resilience"
)

// Provider is one search backend in the chain.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error)
}

// topHits is how many result bodies are merged into one evidence string.
const topHits = 3

// Chain tries providers in priority order and returns the first tier that
// yields results. Each provider sits behind a circuit breaker so a provider
// that is hard-down gets skipped instead of adding latency to every claim.
type Chain struct {
	providers []Provider
	breakers  map[string]*resilience.Breaker
	retry     resilience.RetryConfig
}

// NewChain creates a Chain over the given providers.
func NewChain(providers ...Provider) *Chain {
	c := &Chain{
		providers: providers,
		breakers:  make(map[string]*resilience.Breaker, len(providers)),
		retry:     resilience.DefaultRetryConfig(),
	}
	for _, p := range providers {
		c.breakers[p.Name()] = resilience.NewBreaker(5, 0)
	}
	return c
}

// Search runs the query down the chain. A failure in one tier never
// prevents trying the next.
func (c *Chain) Search(ctx context.Context, query string) model.SearchResult {
	for _, p := range c.providers {
		br := c.breakers[p.Name()]
		if !br.Allow() {
			zap.L().Debug("searchchain: circuit open, skipping provider",
				zap.String("provider", p.Name()),
			)
			continue
		}

		cfg := c.retry
		cfg.OnRetry = resilience.RetryLogger(p.Name(), "search")
		hits, err := resilience.Do(ctx, cfg, func(ctx context.Context) ([]model.SearchHit, error) {
			return p.Search(ctx, query, topHits)
		})
		if err != nil {
			br.RecordFailure()
			zap.L().Warn("searchchain: provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", model.PreviewText(query, 50)),
				zap.Error(err),
			)
			continue
		}
		br.RecordSuccess()

		if len(hits) == 0 {
			zap.L().Debug("searchchain: provider returned no results",
				zap.String("provider", p.Name()),
				zap.String("query", model.PreviewText(query, 50)),
			)
			continue
		}

		zap.L().Debug("searchchain: results found",
			zap.String("provider", p.Name()),
			zap.Int("hits", len(hits)),
		)
		return combine(hits)
	}

	zap.L().Debug("searchchain: no results from any provider",
		zap.String("query", model.PreviewText(query, 50)),
	)
	return model.SearchResult{}
}

// combine merges the top result bodies into one evidence string, keeping
// the first hit's title and URL as the citation source.
func combine(hits []model.SearchHit) model.SearchResult {
	n := len(hits)
	if n > topHits {
		n = topHits
	}
	bodies := make([]string, 0, n)
	for _, h := range hits[:n] {
		if strings.TrimSpace(h.Body) == "" {
			continue
		}
		bodies = append(bodies, "- "+h.Body)
	}

	title := hits[0].Title
	if title == "" {
		title = "Multiple Sources"
	}
	return model.SearchResult{
		Title: title,
		Body:  strings.Join(bodies, "\n"),
		URL:   hits[0].URL,
	}
}
