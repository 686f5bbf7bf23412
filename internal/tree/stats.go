package tree

import (
	"path"
	"sort"
	"strings"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// metadataExtensions are ignored when judging whether a folder holds a
// single kind of content. A homework folder full of notebooks stays
// homogeneous even when a README or config sits next to them.
var metadataExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".md": true,
	".txt": true, ".toml": true, ".ini": true,
}

// ComputeStats summarizes the subtree rooted at node for prompting.
func ComputeStats(node *types.FolderNode) types.FolderStats {
	names := node.ChildNames()
	sort.Strings(names)

	stats := types.FolderStats{
		ImmediateFileCount: len(node.Files),
		SubfolderCount:     len(node.Children),
		SubfolderNames:     names,
		ExtensionCounts:    make(map[string]int),
	}

	files := CollectFiles(node)
	stats.TotalFileCount = len(files)

	contentExts := make(map[string]bool)
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.FileName))
		if ext == "" {
			ext = "(none)"
		}
		stats.ExtensionCounts[ext]++
		if !metadataExtensions[ext] {
			contentExts[ext] = true
		}
	}

	stats.IsHomogeneous = len(contentExts) <= 1
	stats.PrimaryExtensions = primaryExtensions(stats.ExtensionCounts, 3)
	return stats
}

// primaryExtensions returns the top n extensions by count, ties broken
// alphabetically so results are deterministic.
func primaryExtensions(counts map[string]int, n int) []string {
	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if counts[exts[i]] != counts[exts[j]] {
			return counts[exts[i]] > counts[exts[j]]
		}
		return exts[i] < exts[j]
	})
	if len(exts) > n {
		exts = exts[:n]
	}
	return exts
}
