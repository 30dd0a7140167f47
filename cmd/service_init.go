package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/extract"
	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/keypool"
	"github.com/factlens/factlens/internal/pipeline"
	"github.com/factlens/factlens/internal/score"
	"github.com/factlens/factlens/internal/searchchain"
	"github.com/factlens/factlens/internal/store"
	"github.com/factlens/factlens/internal/verifier"
	anthropicpkg "github.com/factlens/factlens/pkg/anthropic"
	"github.com/factlens/factlens/pkg/gemini"
	"github.com/factlens/factlens/pkg/groq"
	"github.com/factlens/factlens/pkg/jina"
	"github.com/factlens/factlens/pkg/tavily"
)

// serviceEnv holds the initialized store and verification service shared by
// the verify and serve commands.
type serviceEnv struct {
	Store   store.Store
	Service *pipeline.Service
}

// Close releases resources held by the service environment.
func (se *serviceEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

// initStore opens the run-history backend selected by config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initSecondary builds the configured secondary generation provider, or nil
// when the fallback tier is disabled or missing its key.
func initSecondary() genchain.Generator {
	switch cfg.Fallback.Provider {
	case "groq":
		if cfg.Fallback.GroqKey == "" {
			zap.L().Debug("FACTLENS_FALLBACK_GROQ_KEY not set, fallback tier disabled")
			return nil
		}
		return groq.NewClient(cfg.Fallback.GroqKey, groq.WithModel(cfg.Fallback.GroqModel))
	case "anthropic":
		if cfg.Fallback.AnthropicKey == "" {
			zap.L().Debug("FACTLENS_FALLBACK_ANTHROPIC_KEY not set, fallback tier disabled")
			return nil
		}
		return &genchain.AnthropicGenerator{
			Client:    anthropicpkg.NewClient(cfg.Fallback.AnthropicKey, anthropicpkg.WithModel(cfg.Fallback.AnthropicModel)),
			Model:     cfg.Fallback.AnthropicModel,
			MaxTokens: 1000,
		}
	case "":
		return nil
	default:
		zap.L().Warn("unknown fallback provider, tier disabled",
			zap.String("provider", cfg.Fallback.Provider),
		)
		return nil
	}
}

// initService sets up the store, all API clients, and the verification
// service. Callers should defer env.Close().
func initService(ctx context.Context) (*serviceEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	pool := keypool.New(
		cfg.Gemini.KeyList(),
		cfg.Gemini.MasterKey,
		time.Duration(cfg.Verify.KeyCooldownSecs)*time.Second,
	)

	geminiClient := gemini.NewClient(
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
	)
	chain := genchain.New(pool, geminiClient, initSecondary())

	jinaClient := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
		jina.WithRateLimit(cfg.Jina.RateLimitRPS),
	)

	// Search tiers in fallback order: Tavily when a key exists, Jina always.
	var providers []searchchain.Provider
	if cfg.Tavily.Key != "" {
		tavilyClient := tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))
		providers = append(providers, &searchchain.TavilyProvider{Client: tavilyClient})
	} else {
		zap.L().Debug("FACTLENS_TAVILY_KEY not set, high-quality search tier disabled")
	}
	providers = append(providers, &searchchain.JinaProvider{Client: jinaClient})
	searcher := searchchain.NewChain(providers...)

	verifyCfg := verifier.DefaultConfig()
	verifyCfg.MaxAttempts = cfg.Verify.MaxAttempts
	verifyCfg.RotationDelay = time.Duration(cfg.Verify.RotationDelayMs) * time.Millisecond
	verifyCfg.BackoffStep = time.Duration(cfg.Verify.BackoffStepMs) * time.Millisecond
	verif := verifier.New(chain, searcher, verifyCfg)

	extractCfg := extract.DefaultConfig()
	extractCfg.MaxAttempts = cfg.Verify.ExtractAttempts
	extractCfg.MaxClaims = cfg.Verify.MaxClaims
	extractCfg.MaxCitations = cfg.Verify.MaxCitations
	extractCfg.RotationDelay = verifyCfg.RotationDelay
	extractCfg.BackoffStep = verifyCfg.BackoffStep
	extractor := extract.New(chain, &extract.JinaReader{Client: jinaClient}, extractCfg)

	batchCfg := pipeline.DefaultConfig()
	batchCfg.Concurrency = cfg.Verify.Concurrency
	batchCfg.ClaimDelay = time.Duration(cfg.Verify.ClaimDelayMs) * time.Millisecond
	batch := pipeline.New(verif, batchCfg)

	svc := pipeline.NewService(chain, extractor, batch,
		score.Config{EmptyScore: cfg.Score.EmptyScore}, st)

	return &serviceEnv{Store: st, Service: svc}, nil
}
