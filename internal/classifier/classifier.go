package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// Provider configuration
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"

	// Default models
	DefaultOpenAIModel = "gpt-4.1"
	DefaultGeminiModel = "gemini-2.0-flash"

	// Prompt limits
	MaxFilesInPrompt   = 50
	MaxSiblingsShown   = 20
	MaxSubfoldersShown = 30

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// Common errors
var (
	ErrProviderFailed      = errors.New("classification provider failed")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrNoProviderEnabled   = errors.New("no classification provider configured")
	ErrProtocolViolation   = errors.New("provider returned malformed decision")
)

// FolderRequest describes one folder to classify.
type FolderRequest struct {
	Path               string
	Name               string
	Stats              types.FolderStats
	Files              []types.FileRecord
	ConcatDescriptions string
	Ancestors          []string
}

// FileRequest describes one file to classify.
type FileRequest struct {
	Path        string
	Name        string
	FolderPath  string
	Description string
	Ancestors   []string
	Siblings    []string
}

// Classifier decides the bucket for folders and files.
type Classifier interface {
	// ClassifyFolder judges a whole folder in one call.
	ClassifyFolder(ctx context.Context, req FolderRequest) (types.Decision, error)

	// ClassifyFile judges a single file.
	ClassifyFile(ctx context.Context, req FileRequest) (types.Decision, error)

	// Provider returns the provider name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the classifier.
	Close() error
}

// Cache provides in-memory LRU caching of decisions by prompt hash.
type Cache struct {
	cache *lru.Cache[string, types.Decision]
}

// NewCache creates a decision cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 4096
	}
	cache, err := lru.New[string, types.Decision](maxLen)
	if err != nil {
		cache, _ = lru.New[string, types.Decision](4096)
	}
	return &Cache{cache: cache}
}

// Get retrieves a cached decision.
func (c *Cache) Get(hash string) (types.Decision, bool) {
	return c.cache.Get(hash)
}

// Set stores a decision with automatic LRU eviction.
func (c *Cache) Set(hash string, d types.Decision) {
	c.cache.Add(hash, d)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash hashes a prompt pair for cache keying.
func ComputeHash(system, user string) string {
	h := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(h[:])
}
