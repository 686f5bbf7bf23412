package types

import "strings"

// lectureFolder is the top-level folder that study material collapses
// into without duplicating the segment.
const lectureFolder = "lecture"

// FileMapping is one planned move: where a file lives now and where the
// reorganized tree puts it. Created once per non-skip terminal file
// decision and never mutated.
type FileMapping struct {
	SourceRel string `json:"source_rel"`
	DestRel   string `json:"dest_rel"`
	TopFolder string `json:"top_folder"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
}

// TopLevelFolder returns the first path segment of a relative path, or ""
// for files that sit directly in the course root.
func TopLevelFolder(sourcePath string) string {
	parts := strings.Split(strings.ReplaceAll(sourcePath, "\\", "/"), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return ""
}

// PathTail strips the top-level folder segment from a relative path.
func PathTail(topFolder, sourcePath string) string {
	if topFolder == "" {
		return sourcePath
	}
	return strings.TrimLeft(strings.TrimPrefix(sourcePath, topFolder), "/")
}

// DestPath builds the destination path for a file from its final category,
// its original top-level folder, and the remainder of its path. Pure
// function: same inputs always produce the same output. Skip is never
// mapped; callers must not ask for a skip destination, and if they do the
// original location is preserved.
func DestPath(category Category, topFolder, tail string) string {
	switch category {
	case CategoryPractice:
		return joinRel("practice", topFolder, tail)
	case CategorySupport:
		return joinRel("support", topFolder, tail)
	case CategoryStudy:
		if topFolder == lectureFolder {
			return joinRel("study", lectureFolder, tail)
		}
		return joinRel("study", lectureFolder, topFolder, tail)
	}
	return joinRel(topFolder, tail)
}

// joinRel joins path parts with "/", dropping empty segments.
func joinRel(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}
