package tree

import (
	"fmt"
	"path"
	"strings"

	"github.com/courseshelf/courseshelf/pkg/types"
)

// Build assembles a folder tree from sorted relative file paths.
// descriptions maps file name to a short description and may be nil;
// files without an entry get an empty description. Children appear in
// the order their first file was seen, which is sorted order for
// sorted input.
func Build(relPaths []string, descriptions map[string]string) *types.FolderNode {
	root := &types.FolderNode{Path: types.RootPath, Name: types.RootPath}
	byPath := map[string]*types.FolderNode{types.RootPath: root}

	for _, rel := range relPaths {
		folderPath := path.Dir(rel)
		fileName := path.Base(rel)

		node := materialize(byPath, folderPath)
		node.Files = append(node.Files, types.FileRecord{
			SourcePath:  rel,
			FolderPath:  folderPath,
			FileName:    fileName,
			Description: descriptions[fileName],
		})
	}

	return root
}

// materialize returns the node for folderPath, creating it and any
// missing ancestors.
func materialize(byPath map[string]*types.FolderNode, folderPath string) *types.FolderNode {
	if node, ok := byPath[folderPath]; ok {
		return node
	}

	parent := materialize(byPath, path.Dir(folderPath))
	node := &types.FolderNode{Path: folderPath, Name: path.Base(folderPath)}
	parent.Children = append(parent.Children, node)
	byPath[folderPath] = node
	return node
}

// CollectFiles returns every file in the subtree rooted at node, in
// breadth-first order.
func CollectFiles(node *types.FolderNode) []types.FileRecord {
	var files []types.FileRecord
	queue := []*types.FolderNode{node}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		files = append(files, cur.Files...)
		queue = append(queue, cur.Children...)
	}
	return files
}

// ConcatDescriptions joins the non-empty file descriptions of files as
// "name: description" lines. At maxChars the line that overflows is
// kept as a partial when at least 20 chars remain, and a marker notes
// how many files were left out.
func ConcatDescriptions(files []types.FileRecord, maxChars int) string {
	var parts []string
	total := 0
	for _, f := range files {
		desc := strings.TrimSpace(strings.ReplaceAll(f.Description, "\n", " "))
		if desc == "" {
			continue
		}
		line := f.FileName + ": " + desc
		if maxChars > 0 && total+len(line) > maxChars {
			if remaining := maxChars - total; remaining > 20 {
				parts = append(parts, line[:remaining]+"...")
			}
			parts = append(parts, fmt.Sprintf("[truncated — %d more files]", len(files)-len(parts)))
			break
		}
		parts = append(parts, line)
		total += len(line) + 1
	}
	return strings.Join(parts, "\n")
}
