package classifier

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by the factory.
const (
	EnvProvider     = "COURSESHELF_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Config holds classifier configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	CacheSize int
	CallLog   *CallLog
}

// New creates a classifier with explicit configuration.
func New(ctx context.Context, cfg Config) (Classifier, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClassifier(cfg.APIKey, cfg.Model, cache, cfg.CallLog)
	case ProviderGemini:
		return NewGeminiClassifier(ctx, cfg.Model, cache, cfg.CallLog)
	case ProviderHeuristic:
		return NewHeuristicClassifier(cfg.CallLog)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// NewFromEnv creates a classifier based on environment variables.
// Priority:
//  1. COURSESHELF_PROVIDER (openai, gemini, heuristic)
//  2. Check for API keys: OPENAI_API_KEY, GEMINI_API_KEY
//  3. Default to the heuristic provider when no API keys are found
func NewFromEnv(ctx context.Context) (Classifier, error) {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return New(ctx, Config{Provider: provider, CacheSize: 4096, CallLog: NewCallLog()})
	}
	return New(ctx, Config{Provider: DetectProvider(), CacheSize: 4096, CallLog: NewCallLog()})
}

// DetectProvider returns the provider that would be used for the
// current environment.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvGeminiAPIKey) != "" {
		return ProviderGemini
	}
	return ProviderHeuristic
}
