package types

// RootPath is the canonical path of the tree root.
const RootPath = "."

// FileRecord describes a single scanned file. Immutable once built.
type FileRecord struct {
	SourcePath  string // Relative to the course root, forward slashes
	FolderPath  string // Parent folder path, "." for top-level files
	FileName    string
	Description string // From the file index; may be empty
}

// FolderNode is a folder in the scanned tree. Children preserve first-seen
// order of the (sorted) input paths, so traversal order is deterministic.
type FolderNode struct {
	Path     string // Canonical relative path, "." for the root
	Name     string
	Files    []FileRecord
	Children []*FolderNode
}

// IsLeaf reports whether the folder has no subfolders.
func (n *FolderNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Child returns the immediate child folder with the given name, or nil.
func (n *FolderNode) Child(name string) *FolderNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildNames returns the names of the immediate subfolders in tree order.
func (n *FolderNode) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

// TotalFileCount counts all files in the subtree rooted at n.
func (n *FolderNode) TotalFileCount() int {
	count := len(n.Files)
	for _, c := range n.Children {
		count += c.TotalFileCount()
	}
	return count
}

// FileNames returns the names of the folder's immediate files.
func (n *FolderNode) FileNames() []string {
	names := make([]string, 0, len(n.Files))
	for _, f := range n.Files {
		names = append(names, f.FileName)
	}
	return names
}
