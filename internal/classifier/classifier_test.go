package classifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseshelf/courseshelf/pkg/types"
)

func TestCache(t *testing.T) {
	cache := NewCache(2)

	d := types.Decision{Category: types.CategoryStudy, Confidence: 0.9}
	cache.Set("a", d)

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, d, got)

	_, ok = cache.Get("missing")
	assert.False(t, ok)

	// LRU eviction at capacity
	cache.Set("b", d)
	cache.Set("c", d)
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestComputeHash(t *testing.T) {
	h1 := ComputeHash("sys", "user")
	h2 := ComputeHash("sys", "user")
	h3 := ComputeHash("sys2", "user")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	// The separator keeps boundary-shifted prompts distinct.
	assert.NotEqual(t, ComputeHash("ab", "c"), ComputeHash("a", "bc"))
}

func TestParseDecision(t *testing.T) {
	t.Run("valid folder decision", func(t *testing.T) {
		d, err := parseDecision(`{
			"folder_path": "hw",
			"reason": "Folder holds graded homework.",
			"category": "practice",
			"confidence": 0.92,
			"is_mixed": false,
			"folder_description": "Homework assignments."
		}`)
		require.NoError(t, err)
		assert.Equal(t, types.CategoryPractice, d.Category)
		assert.Equal(t, 0.92, d.Confidence)
		assert.False(t, d.IsMixed)
		assert.Equal(t, "Homework assignments.", d.FolderDescription)
	})

	t.Run("markdown fenced json", func(t *testing.T) {
		d, err := parseDecision("```json\n{\"reason\":\"r\",\"category\":\"study\",\"confidence\":0.8}\n```")
		require.NoError(t, err)
		assert.Equal(t, types.CategoryStudy, d.Category)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := parseDecision("not json")
		assert.ErrorIs(t, err, ErrProtocolViolation)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := parseDecision(`{"reason":"r","category":"lectures","confidence":0.8}`)
		assert.ErrorIs(t, err, ErrProtocolViolation)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		_, err := parseDecision(`{"reason":"r","category":"study","confidence":1.4}`)
		assert.ErrorIs(t, err, ErrProtocolViolation)
	})
}

func TestFolderUserPrompt(t *testing.T) {
	req := FolderRequest{
		Path: "hw",
		Name: "hw",
		Stats: types.FolderStats{
			TotalFileCount:    2,
			SubfolderCount:    1,
			SubfolderNames:    []string{"hw1"},
			IsHomogeneous:     true,
			PrimaryExtensions: []string{".py"},
		},
		Files: []types.FileRecord{
			{FileName: "solution.py", Description: "reference solution"},
			{FileName: "starter.py"},
		},
		ConcatDescriptions: "solution.py: reference solution",
		Ancestors:          []string{"Course root for CS61A."},
	}

	prompt := folderUserPrompt(req)
	assert.Contains(t, prompt, "Folder: hw")
	assert.Contains(t, prompt, "Ancestor context (root -> parent):")
	assert.Contains(t, prompt, "[0] Course root for CS61A.")
	assert.Contains(t, prompt, "TotalFiles: 2")
	assert.Contains(t, prompt, "HasSubfolders: yes")
	assert.Contains(t, prompt, "FileTypesHomogeneous: yes")
	assert.Contains(t, prompt, "PrimaryFileTypes: .py")
	assert.Contains(t, prompt, "- solution.py :: reference solution")
	assert.Contains(t, prompt, "- starter.py :: [no description]")
	assert.Contains(t, prompt, "Concatenated file descriptions:")
}

func TestFolderUserPromptCapsFiles(t *testing.T) {
	req := FolderRequest{Path: "big", Name: "big"}
	for i := 0; i < MaxFilesInPrompt+10; i++ {
		req.Files = append(req.Files, types.FileRecord{FileName: "f.pdf"})
	}

	prompt := folderUserPrompt(req)
	assert.Contains(t, prompt, "... and 10 more files")
	assert.Equal(t, MaxFilesInPrompt, strings.Count(prompt, "- f.pdf"))
}

func TestFileUserPrompt(t *testing.T) {
	req := FileRequest{
		Path:        "hw/hw1/solution.py",
		Name:        "solution.py",
		FolderPath:  "hw/hw1",
		Description: "reference solution",
		Ancestors:   []string{"Homework root."},
		Siblings:    []string{"starter.py", "tests.py"},
	}

	prompt := fileUserPrompt(req)
	assert.Contains(t, prompt, "File: hw/hw1/solution.py")
	assert.Contains(t, prompt, "Parent folder: hw/hw1")
	assert.Contains(t, prompt, "Extension: .py")
	assert.Contains(t, prompt, "Description: reference solution")
	assert.Contains(t, prompt, "Sibling files in same directory (2 total):")
	assert.Contains(t, prompt, "- starter.py")
}

func TestFileUserPromptNoDescription(t *testing.T) {
	prompt := fileUserPrompt(FileRequest{Path: "a.pdf", Name: "a.pdf", FolderPath: "."})
	assert.Contains(t, prompt, "Description: [none available]")
	assert.NotContains(t, prompt, "Sibling files")
}

func TestHeuristicClassifier(t *testing.T) {
	h, err := NewHeuristicClassifier(NewCallLog())
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()

	t.Run("folder by name", func(t *testing.T) {
		tests := []struct {
			name string
			want types.Category
		}{
			{"hw", types.CategoryPractice},
			{"lecture", types.CategoryStudy},
			{"syllabus_info", types.CategorySupport},
		}
		for _, tt := range tests {
			d, err := h.ClassifyFolder(ctx, FolderRequest{
				Path: tt.name, Name: tt.name,
				Stats: types.FolderStats{TotalFileCount: 3},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Category, tt.name)
			assert.True(t, d.IsConfident(0.75), tt.name)
			assert.NotEmpty(t, d.FolderDescription)
		}
	})

	t.Run("empty folder skipped", func(t *testing.T) {
		d, err := h.ClassifyFolder(ctx, FolderRequest{Path: "old", Name: "old"})
		require.NoError(t, err)
		assert.Equal(t, types.CategorySkip, d.Category)
		assert.True(t, d.IsConfident(0.75))
	})

	t.Run("unknown folder name is unconfident", func(t *testing.T) {
		d, err := h.ClassifyFolder(ctx, FolderRequest{
			Path: "misc", Name: "misc",
			Stats: types.FolderStats{TotalFileCount: 3, SubfolderCount: 2, SubfolderNames: []string{"a", "b"}},
		})
		require.NoError(t, err)
		assert.False(t, d.IsConfident(0.75))
		assert.False(t, d.IsMixed, "descent comes from the low score alone")
	})

	t.Run("skip extensions", func(t *testing.T) {
		d, err := h.ClassifyFile(ctx, FileRequest{Path: "build/mod.pyc", Name: "mod.pyc", FolderPath: "build"})
		require.NoError(t, err)
		assert.Equal(t, types.CategorySkip, d.Category)
	})

	t.Run("notebooks are practice", func(t *testing.T) {
		d, err := h.ClassifyFile(ctx, FileRequest{Path: "hw/hw1.ipynb", Name: "hw1.ipynb", FolderPath: "hw"})
		require.NoError(t, err)
		assert.Equal(t, types.CategoryPractice, d.Category)
	})

	t.Run("falls back to folder name", func(t *testing.T) {
		d, err := h.ClassifyFile(ctx, FileRequest{Path: "lecture/01.pdf", Name: "01.pdf", FolderPath: "lecture"})
		require.NoError(t, err)
		assert.Equal(t, types.CategoryStudy, d.Category)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.ClassifyFolder(cctx, FolderRequest{Path: "hw", Name: "hw"})
		assert.Error(t, err)
	})
}

func TestHeuristicMetadata(t *testing.T) {
	h, err := NewHeuristicClassifier(nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderHeuristic, h.Provider())
	assert.Equal(t, "filename-rules", h.Model())
	assert.NoError(t, h.Close())
}
