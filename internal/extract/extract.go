// Package extract pulls factual claims, citations, and the text language out
// of free-form input via the generation fallback chain. Extraction is
// best-effort: when the chain is exhausted it falls back to naive sentence
// splitting rather than failing the request.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/resilience"
	"github.com/factlens/factlens/internal/verifier"
)

// Result is the extraction outcome fed into the batch pipeline.
type Result struct {
	Language  string
	Claims    []string
	Citations []string
}

// ContextReader fetches the optional context URL attached to a request.
type ContextReader interface {
	Read(ctx context.Context, targetURL string) (title, content string, err error)
}

// Config holds extraction tuning.
type Config struct {
	// MaxAttempts is the generation attempt budget for extraction.
	MaxAttempts int
	// MaxClaims and MaxCitations cap how many items are verified per request.
	MaxClaims    int
	MaxCitations int
	// RotationDelay and BackoffStep mirror the verifier's retry pacing.
	RotationDelay time.Duration
	BackoffStep   time.Duration
	// MaxContextChars truncates fetched context-URL content.
	MaxContextChars int
}

// DefaultConfig returns the extraction tuning the original deployment used.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		MaxClaims:       3,
		MaxCitations:    2,
		RotationDelay:   2 * time.Second,
		BackoffStep:     10 * time.Second,
		MaxContextChars: 8000,
	}
}

// Extractor extracts claims and citations from text.
type Extractor struct {
	gen    genchain.Generator
	reader ContextReader // nil disables context-URL fetching
	cfg    Config
}

// New creates an Extractor. reader may be nil.
func New(gen genchain.Generator, reader ContextReader, cfg Config) *Extractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxClaims <= 0 {
		cfg.MaxClaims = 3
	}
	if cfg.MaxCitations <= 0 {
		cfg.MaxCitations = 2
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 8000
	}
	return &Extractor{gen: gen, reader: reader, cfg: cfg}
}

type extractionPayload struct {
	Language  string   `json:"language"`
	Claims    []string `json:"claims"`
	Citations []string `json:"citations"`
}

// Extract analyzes the input text. contextURL may be empty.
func (e *Extractor) Extract(ctx context.Context, text, contextURL string) Result {
	input := e.withContext(ctx, text, contextURL)
	prompt := extractionPrompt(input)

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		raw, err := e.gen.Generate(ctx, prompt)
		if err == nil {
			payload, perr := parsePayload(raw)
			if perr == nil {
				result := Result{
					Language:  NormalizeLanguage(payload.Language),
					Claims:    capList(payload.Claims, e.cfg.MaxClaims),
					Citations: capList(payload.Citations, e.cfg.MaxCitations),
				}
				zap.L().Info("extract: extraction complete",
					zap.Int("claims", len(result.Claims)),
					zap.Int("citations", len(result.Citations)),
					zap.String("language", result.Language),
				)
				return result
			}
			err = perr
		}
		lastErr = err

		if attempt == e.cfg.MaxAttempts {
			break
		}
		switch {
		case genchain.IsRotated(err):
			sleepCtx(ctx, e.cfg.RotationDelay)
		case resilience.IsRateLimited(err):
			sleepCtx(ctx, time.Duration(attempt)*e.cfg.BackoffStep)
		default:
			// A non-rate-limited failure here is unlikely to heal within the
			// request; go straight to the naive fallback.
			return e.fallbackSplit(text, err)
		}
	}
	return e.fallbackSplit(text, lastErr)
}

// fallbackSplit degrades to sentence splitting: sentences longer than 20
// characters become claims, citations are skipped.
func (e *Extractor) fallbackSplit(text string, cause error) Result {
	zap.L().Warn("extract: falling back to sentence splitting", zap.Error(cause))

	var claims []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 20 {
			claims = append(claims, s)
		}
		if len(claims) >= 2 {
			break
		}
	}
	return Result{Language: "en", Claims: claims}
}

// withContext prepends fetched context-URL content to the analyzed text.
// Fetch failures are logged and ignored.
func (e *Extractor) withContext(ctx context.Context, text, contextURL string) string {
	if contextURL == "" || e.reader == nil {
		return text
	}
	title, content, err := e.reader.Read(ctx, contextURL)
	if err != nil {
		zap.L().Warn("extract: context url fetch failed",
			zap.String("url", contextURL),
			zap.Error(err),
		)
		return text
	}
	if len(content) > e.cfg.MaxContextChars {
		content = content[:e.cfg.MaxContextChars]
	}
	return fmt.Sprintf("Context from %s (%s):\n%s\n\n%s", contextURL, title, content, text)
}

func parsePayload(raw string) (extractionPayload, error) {
	var p extractionPayload
	obj, err := verifier.ExtractJSON(raw)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return p, eris.Wrap(err, "extract: unmarshal extraction response")
	}
	return p, nil
}

// NormalizeLanguage coerces a model-reported language tag into a base
// ISO 639-1 code, defaulting to "en" for anything unparseable.
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "en"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "en"
	}
	base, conf := t.Base()
	if conf == language.No {
		return "en"
	}
	return base.String()
}

func capList(items []string, max int) []string {
	out := make([]string, 0, max)
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) >= max {
			break
		}
	}
	return out
}

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text and extract:
1. The ISO 639-1 language code of the text (e.g., 'en', 'hi', 'es'). Default to 'en' if unsure.
2. Key factual claims (dates, facts, numbers, quotes). Limit to the 3 most important claims.
3. Any citations or references mentioned (papers, journals, authors). Limit to 2.

Return ONLY a JSON object with this structure:
{
	"language": "en",
	"claims": ["claim 1", "claim 2"],
	"citations": ["citation 1", "citation 2"]
}

Text: %q`, text)
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
