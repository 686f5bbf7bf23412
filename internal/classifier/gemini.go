package classifier

import (
	"context"
	"fmt"
	"os"

	genai "google.golang.org/genai"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// GeminiClassifier implements Classifier using the Google GenAI API
// with a JSON response MIME type.
type GeminiClassifier struct {
	cli     *genai.Client
	model   string
	cache   *Cache
	callLog *CallLog
}

// NewGeminiClassifier creates a Gemini-backed classifier. The genai
// client reads GEMINI_API_KEY from the environment.
func NewGeminiClassifier(ctx context.Context, model string, cache *Cache, callLog *CallLog) (*GeminiClassifier, error) {
	if os.Getenv(EnvGeminiAPIKey) == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvGeminiAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClassifier{
		cli:     cli,
		model:   model,
		cache:   cache,
		callLog: callLog,
	}, nil
}

func (g *GeminiClassifier) ClassifyFolder(ctx context.Context, req FolderRequest) (types.Decision, error) {
	return g.classify(ctx, CallTypeFolder, folderSystemPrompt, folderUserPrompt(req))
}

func (g *GeminiClassifier) ClassifyFile(ctx context.Context, req FileRequest) (types.Decision, error) {
	return g.classify(ctx, CallTypeFile, fileSystemPrompt, fileUserPrompt(req))
}

func (g *GeminiClassifier) classify(ctx context.Context, callType, system, user string) (types.Decision, error) {
	hash := ComputeHash(system, user)
	if g.cache != nil {
		if d, ok := g.cache.Get(hash); ok {
			return d, nil
		}
	}

	config := DefaultRetryConfig()
	decision, err := retryWithBackoff(ctx, config, func() (types.Decision, error) {
		return g.callAPI(ctx, callType, system, user)
	})
	if err != nil {
		return types.Decision{}, fmt.Errorf("%w after %d retries: %w", ErrProviderFailed, MaxRetries, err)
	}

	if g.cache != nil {
		g.cache.Set(hash, decision)
	}
	return decision, nil
}

func (g *GeminiClassifier) callAPI(ctx context.Context, callType, system, user string) (types.Decision, error) {
	full := system + "\n\n" + user

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		g.callLog.Record(callType, system, user, "", err)
		return types.Decision{}, fmt.Errorf("api call: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("%w: no candidates returned", ErrProtocolViolation)
		g.callLog.Record(callType, system, user, "", err)
		return types.Decision{}, err
	}

	raw := resp.Candidates[0].Content.Parts[0].Text
	decision, err := parseDecision(raw)
	g.callLog.Record(callType, system, user, raw, err)
	if err != nil {
		return types.Decision{}, err
	}
	return decision, nil
}

func (g *GeminiClassifier) Provider() string {
	return ProviderGemini
}

func (g *GeminiClassifier) Model() string {
	return g.model
}

func (g *GeminiClassifier) Close() error {
	return nil
}
