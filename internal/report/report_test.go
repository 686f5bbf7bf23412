package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/engine"
	"github.com/courseshelf/courseshelf/pkg/types"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Classifications: map[string]types.Classification{
			"hw": {Path: "hw", Category: types.CategoryPractice, Confidence: 0.9, Level: types.LevelFolder},
			"hw/hw1.pdf": {
				Path: "hw/hw1.pdf", Category: types.CategoryPractice,
				Confidence: 0.9, Level: types.LevelFolder, ParentFolder: "hw",
			},
			"build": {Path: "build", Category: types.CategorySkip, Confidence: 0.95, Level: types.LevelFolder},
		},
		FolderDecisions: map[string]types.Decision{
			"hw": {
				Category: types.CategoryPractice, Confidence: 0.9,
				Reason: "Homework folder.", FolderDescription: "Graded homework sets.",
			},
			"build": {Category: types.CategorySkip, Confidence: 0.95, Reason: "Build artifacts."},
		},
		SkippedFolders: []string{"build"},
		Mappings: map[string]types.FileMapping{
			"hw/hw1.pdf": {
				SourceRel: "hw/hw1.pdf", DestRel: "practice/hw/hw1.pdf",
				TopFolder: "hw", Category: "practice", Reason: "Homework folder.",
			},
			"lecture/week1.pdf": {
				SourceRel: "lecture/week1.pdf", DestRel: "study/lecture/week1.pdf",
				TopFolder: "lecture", Category: "study", Reason: "Slides.",
			},
		},
		FilesViaFolder: 1,
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	calls := []classifier.CallEntry{
		{Timestamp: time.Now(), CallType: classifier.CallTypeFolder, UserPrompt: "Folder: hw", RawOutput: `{"category":"practice"}`},
		{Timestamp: time.Now(), CallType: classifier.CallTypeFile, UserPrompt: "File: x", Error: "api error 500"},
	}

	err := WriteMarkdown(path, sampleResult(), calls, Meta{
		SourceRoot: "/courses/cs61a",
		Provider:   "openai",
		Model:      "gpt-4.1",
		Threshold:  0.75,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Course Reorganization Report")
	assert.Contains(t, out, "| practice items | 2 |")
	assert.Contains(t, out, "| Skipped folders | 1 |")
	assert.Contains(t, out, "| `hw` | **practice** | 0.90 | no | Graded homework sets. |")
	assert.Contains(t, out, "### `hw`: practice (0.90)")
	assert.Contains(t, out, "Total calls: 2")
	assert.Contains(t, out, "**ERROR:** `api error 500`")
	assert.Contains(t, out, "| `hw/hw1.pdf` | `practice/hw/hw1.pdf` | practice |")
	assert.Contains(t, out, "- `build`: Build artifacts.")

	// Destination tree renders nested folders
	assert.Contains(t, out, "practice/")
	assert.Contains(t, out, "study/")
	assert.Contains(t, out, "week1.pdf")
}

func TestWritePlanJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, WritePlanJSON(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var p struct {
		FolderDecisions map[string]struct {
			Category   string  `json:"category"`
			Confidence float64 `json:"confidence"`
			IsMixed    bool    `json:"is_mixed"`
		} `json:"folder_decisions"`
		SkippedFolders []string            `json:"skipped_folders"`
		Mappings       []types.FileMapping `json:"mappings"`
		Stats          struct {
			TotalMappings int `json:"total_mappings"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, "practice", p.FolderDecisions["hw"].Category)
	assert.Equal(t, []string{"build"}, p.SkippedFolders)
	require.Len(t, p.Mappings, 2)
	assert.Equal(t, "hw/hw1.pdf", p.Mappings[0].SourceRel, "mappings sorted by source")
	assert.Equal(t, 2, p.Stats.TotalMappings)
}

func TestWritePlanJSONEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	empty := &engine.Result{
		Classifications: map[string]types.Classification{},
		FolderDecisions: map[string]types.Decision{},
		Mappings:        map[string]types.FileMapping{},
	}
	require.NoError(t, WritePlanJSON(path, empty))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"skipped_folders": []`)
}
