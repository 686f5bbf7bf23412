// Package scanner walks a course directory on disk and produces the
// sorted list of relative file paths the rest of the pipeline operates on.
package scanner
