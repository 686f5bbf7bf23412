package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// wireDecision is the JSON shape every provider must return.
type wireDecision struct {
	FolderPath        string  `json:"folder_path,omitempty"`
	FilePath          string  `json:"file_path,omitempty"`
	Reason            string  `json:"reason"`
	Category          string  `json:"category"`
	Confidence        float64 `json:"confidence"`
	IsMixed           bool    `json:"is_mixed,omitempty"`
	FolderDescription string  `json:"folder_description,omitempty"`
}

// parseDecision decodes and validates a provider response body. Models
// sometimes wrap JSON in a markdown fence, so that is stripped first.
func parseDecision(raw string) (types.Decision, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var wire wireDecision
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	cat, err := types.ParseCategory(wire.Category)
	if err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	d := types.Decision{
		Category:          cat,
		Confidence:        wire.Confidence,
		IsMixed:           wire.IsMixed,
		Reason:            wire.Reason,
		FolderDescription: wire.FolderDescription,
	}
	if err := d.Validate(); err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	return d, nil
}
