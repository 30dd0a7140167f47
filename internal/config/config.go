// Package config loads the application configuration from config.yaml and
// FACTLENS_* environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// keyPlaceholder is the documented placeholder shipped in the sample config;
// it is filtered out so a copy-pasted template does not count as a key.
const keyPlaceholder = "Paste_Your_Google_Gemini_Key_Here"

// Config holds the full application configuration.
type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Fallback  FallbackConfig  `yaml:"fallback" mapstructure:"fallback"`
	Tavily    TavilyConfig    `yaml:"tavily" mapstructure:"tavily"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Verify    VerifyConfig    `yaml:"verify" mapstructure:"verify"`
	Score     ScoreConfig     `yaml:"score" mapstructure:"score"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GeminiConfig holds primary generation provider settings.
type GeminiConfig struct {
	// Keys is a comma-separated list of interchangeable API keys.
	Keys string `yaml:"keys" mapstructure:"keys"`
	// MasterKey is the overflow credential used only when every regular key
	// is on cooldown.
	MasterKey string `yaml:"master_key" mapstructure:"master_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// KeyList returns the usable keys with blanks and the documented
// placeholder filtered out.
func (c GeminiConfig) KeyList() []string {
	var keys []string
	for _, k := range strings.Split(c.Keys, ",") {
		k = strings.TrimSpace(k)
		if k == "" || k == keyPlaceholder {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// FallbackConfig selects and configures the secondary generation provider.
type FallbackConfig struct {
	// Provider is "groq" or "anthropic"; empty disables the fallback tier.
	Provider       string `yaml:"provider" mapstructure:"provider"`
	GroqKey        string `yaml:"groq_key" mapstructure:"groq_key"`
	GroqModel      string `yaml:"groq_model" mapstructure:"groq_model"`
	AnthropicKey   string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
}

// TavilyConfig holds the high-quality search tier settings.
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds the general-purpose search tier and reader settings.
type JinaConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string  `yaml:"search_base_url" mapstructure:"search_base_url"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// VerifyConfig holds the retry, rotation, and concurrency tuning. These are
// tied to the providers' real rate-limit policies, so none are hardcoded.
type VerifyConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	ExtractAttempts  int `yaml:"extract_attempts" mapstructure:"extract_attempts"`
	Concurrency      int `yaml:"concurrency" mapstructure:"concurrency"`
	ClaimDelayMs     int `yaml:"claim_delay_ms" mapstructure:"claim_delay_ms"`
	RotationDelayMs  int `yaml:"rotation_delay_ms" mapstructure:"rotation_delay_ms"`
	BackoffStepMs    int `yaml:"backoff_step_ms" mapstructure:"backoff_step_ms"`
	KeyCooldownSecs  int `yaml:"key_cooldown_secs" mapstructure:"key_cooldown_secs"`
	MaxClaims        int `yaml:"max_claims" mapstructure:"max_claims"`
	MaxCitations     int `yaml:"max_citations" mapstructure:"max_citations"`
}

// ScoreConfig holds the scoring policy.
type ScoreConfig struct {
	// EmptyScore is the overall score when no claims are found.
	EmptyScore int `yaml:"empty_score" mapstructure:"empty_score"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the verification API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FACTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Defaults returns every configuration key with its default value. Shared
// by Load and `config init`.
func Defaults() map[string]any {
	return map[string]any{
		"gemini.model":            "gemini-3-flash-preview",
		"gemini.base_url":         "https://generativelanguage.googleapis.com/v1beta",
		"fallback.provider":       "groq",
		"fallback.groq_model":     "llama-3.3-70b-versatile",
		"fallback.anthropic_model": "claude-haiku-4-5-20251001",
		"tavily.base_url":         "https://api.tavily.com",
		"jina.base_url":           "https://r.jina.ai",
		"jina.search_base_url":    "https://s.jina.ai",
		"jina.rate_limit_rps":     1.0,
		"verify.max_attempts":     5,
		"verify.extract_attempts": 3,
		"verify.concurrency":      2,
		"verify.claim_delay_ms":   1000,
		"verify.rotation_delay_ms": 2000,
		"verify.backoff_step_ms":  10000,
		"verify.key_cooldown_secs": 60,
		"verify.max_claims":       3,
		"verify.max_citations":    2,
		"score.empty_score":       0,
		"store.driver":            "sqlite",
		"store.database_url":      "factlens.db",
		"server.port":             8080,
		"log.level":               "info",
		"log.format":              "json",
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
