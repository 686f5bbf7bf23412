package classifier

import (
	"context"
	"path"
	"strings"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// HeuristicClassifier is a deterministic offline provider driven by
// filename conventions. It makes no network calls and is the fallback
// when no API key is configured, which also makes it the natural
// provider for tests.
type HeuristicClassifier struct {
	callLog *CallLog
}

// NewHeuristicClassifier creates the offline classifier.
func NewHeuristicClassifier(callLog *CallLog) (*HeuristicClassifier, error) {
	return &HeuristicClassifier{callLog: callLog}, nil
}

var (
	practiceTokens = []string{"hw", "homework", "lab", "project", "assignment", "exercise", "quiz", "exam", "midterm", "final"}
	studyTokens    = []string{"lecture", "slide", "note", "reading", "video", "discussion", "disc", "section", "week", "chapter"}
	supportTokens  = []string{"syllabus", "textbook", "calendar", "logistics", "cheatsheet", "guide", "resource", "tool"}

	skipExtensions = map[string]bool{
		".pyc": true, ".pyo": true, ".o": true, ".class": true,
		".log": true, ".tmp": true, ".lock": true, ".exe": true,
	}
)

func (h *HeuristicClassifier) ClassifyFolder(ctx context.Context, req FolderRequest) (types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return types.Decision{}, err
	}

	user := folderUserPrompt(req)

	// An unmatched name scores low, so the traversal descends to the
	// folder's children.
	d := decideByName(req.Name, req.Stats.TotalFileCount == 0)
	d.FolderDescription = "Folder " + req.Path + " classified by naming conventions as " + d.Category.String() + "."

	h.callLog.Record(CallTypeFolder, folderSystemPrompt, user, d.Reason, nil)
	return d, nil
}

func (h *HeuristicClassifier) ClassifyFile(ctx context.Context, req FileRequest) (types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return types.Decision{}, err
	}

	user := fileUserPrompt(req)

	ext := strings.ToLower(path.Ext(req.Name))
	if skipExtensions[ext] {
		d := types.Decision{
			Category:   types.CategorySkip,
			Confidence: 0.95,
			Reason:     "Extension " + ext + " marks a generated or throwaway file.",
		}
		h.callLog.Record(CallTypeFile, fileSystemPrompt, user, d.Reason, nil)
		return d, nil
	}
	if ext == ".ipynb" {
		d := types.Decision{
			Category:   types.CategoryPractice,
			Confidence: 0.85,
			Reason:     "Notebooks are assignment work by convention.",
		}
		h.callLog.Record(CallTypeFile, fileSystemPrompt, user, d.Reason, nil)
		return d, nil
	}

	d := decideByName(req.Name, false)
	if d.Confidence < 0.5 {
		// Fall back to the folder name when the file name says nothing.
		parent := decideByName(path.Base(req.FolderPath), false)
		if parent.Confidence > d.Confidence {
			d = parent
		}
	}
	h.callLog.Record(CallTypeFile, fileSystemPrompt, user, d.Reason, nil)
	return d, nil
}

// decideByName matches lowercase name tokens against category keyword
// lists. Unmatched names get a low-confidence support guess.
func decideByName(name string, empty bool) types.Decision {
	lower := strings.ToLower(name)

	if empty {
		return types.Decision{
			Category:   types.CategorySkip,
			Confidence: 0.9,
			Reason:     "Folder contains no files.",
		}
	}

	for _, tok := range practiceTokens {
		if strings.Contains(lower, tok) {
			return types.Decision{
				Category:   types.CategoryPractice,
				Confidence: 0.85,
				Reason:     "Name contains '" + tok + "', an assignment naming convention.",
			}
		}
	}
	for _, tok := range studyTokens {
		if strings.Contains(lower, tok) {
			return types.Decision{
				Category:   types.CategoryStudy,
				Confidence: 0.85,
				Reason:     "Name contains '" + tok + "', an instructional-material naming convention.",
			}
		}
	}
	for _, tok := range supportTokens {
		if strings.Contains(lower, tok) {
			return types.Decision{
				Category:   types.CategorySupport,
				Confidence: 0.85,
				Reason:     "Name contains '" + tok + "', a course-logistics naming convention.",
			}
		}
	}

	return types.Decision{
		Category:   types.CategorySupport,
		Confidence: 0.4,
		Reason:     "Name '" + name + "' matches no known convention.",
	}
}

func (h *HeuristicClassifier) Provider() string {
	return ProviderHeuristic
}

func (h *HeuristicClassifier) Model() string {
	return "filename-rules"
}

func (h *HeuristicClassifier) Close() error {
	return nil
}
