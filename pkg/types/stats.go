package types

// FolderStats holds cheap structural aggregates for a folder subtree.
// Derived data: recomputed per folder visit, never persisted.
type FolderStats struct {
	TotalFileCount     int
	ImmediateFileCount int
	SubfolderCount     int
	SubfolderNames     []string // Sorted
	ExtensionCounts    map[string]int
	IsHomogeneous      bool     // At most one distinct non-metadata extension
	PrimaryExtensions  []string // Top 3 by frequency
}

// HasSubfolders reports whether the folder contains any subfolders.
func (s FolderStats) HasSubfolders() bool {
	return s.SubfolderCount > 0
}
