package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/courseshelf/courseshelf/pkg/types"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClassifier implements Classifier using the OpenAI chat
// completions API in JSON mode.
type OpenAIClassifier struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	callLog    *CallLog
}

// NewOpenAIClassifier creates an OpenAI-backed classifier.
func NewOpenAIClassifier(apiKey, model string, cache *Cache, callLog *CallLog) (*OpenAIClassifier, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIClassifier{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   cache,
		callLog: callLog,
	}, nil
}

// SetBaseURL overrides the API endpoint, used by tests.
func (o *OpenAIClassifier) SetBaseURL(url string) {
	o.baseURL = url
}

func (o *OpenAIClassifier) ClassifyFolder(ctx context.Context, req FolderRequest) (types.Decision, error) {
	return o.classify(ctx, CallTypeFolder, folderSystemPrompt, folderUserPrompt(req))
}

func (o *OpenAIClassifier) ClassifyFile(ctx context.Context, req FileRequest) (types.Decision, error) {
	return o.classify(ctx, CallTypeFile, fileSystemPrompt, fileUserPrompt(req))
}

func (o *OpenAIClassifier) classify(ctx context.Context, callType, system, user string) (types.Decision, error) {
	hash := ComputeHash(system, user)
	if o.cache != nil {
		if d, ok := o.cache.Get(hash); ok {
			return d, nil
		}
	}

	config := DefaultRetryConfig()
	decision, err := retryWithBackoff(ctx, config, func() (types.Decision, error) {
		return o.callAPI(ctx, callType, system, user)
	})
	if err != nil {
		return types.Decision{}, fmt.Errorf("%w after %d retries: %w", ErrProviderFailed, MaxRetries, err)
	}

	if o.cache != nil {
		o.cache.Set(hash, decision)
	}
	return decision, nil
}

func (o *OpenAIClassifier) callAPI(ctx context.Context, callType, system, user string) (types.Decision, error) {
	reqBody := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return types.Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return types.Decision{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.callLog.Record(callType, system, user, "", err)
		return types.Decision{}, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
		o.callLog.Record(callType, system, user, string(bodyBytes), err)
		return types.Decision{}, err
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		o.callLog.Record(callType, system, user, "", err)
		return types.Decision{}, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrProtocolViolation)
		o.callLog.Record(callType, system, user, "", err)
		return types.Decision{}, err
	}

	raw := apiResp.Choices[0].Message.Content
	decision, err := parseDecision(raw)
	o.callLog.Record(callType, system, user, raw, err)
	if err != nil {
		return types.Decision{}, err
	}
	return decision, nil
}

func (o *OpenAIClassifier) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIClassifier) Model() string {
	return o.model
}

func (o *OpenAIClassifier) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
