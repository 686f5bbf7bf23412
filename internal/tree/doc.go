// Package tree builds the in-memory folder tree from scanned paths and
// computes the per-folder statistics the classification prompts rely on.
package tree
