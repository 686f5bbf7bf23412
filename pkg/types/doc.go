// Package types defines the shared data model for course reorganization:
// the four-bucket category system, the folder tree built from scanned
// paths, structural folder statistics, oracle decisions, terminal
// classifications, and planned file mappings.
//
// Everything in this package is plain data. The traversal logic lives in
// internal/engine; the classification oracle lives in internal/classifier.
package types
