// Package engine runs the top-down traversal that turns a folder tree
// into a reorganization plan.
//
// Folders are visited breadth-first. A confident folder decision
// assigns the whole subtree in one step; a confident skip prunes the
// subtree. Anything less confident, or flagged as mixed content,
// descends so children and files are judged individually. Every folder
// and file is classified exactly once.
package engine
