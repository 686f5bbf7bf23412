// Package classifier decides which bucket a course folder or file
// belongs in.
//
// The Classifier interface is backed by interchangeable providers:
//
//   - openai: chat completions with JSON output
//   - gemini: Google GenAI with a JSON response MIME type
//   - heuristic: deterministic filename rules, no network
//
// Providers share an LRU decision cache keyed by prompt hash, retry
// transient API failures with exponential backoff, and can record
// every call in a CallLog for offline inspection.
//
// A folder is classified in a single call that returns the category,
// a confidence score, a mixed-content flag, and a one-sentence folder
// description reused as ancestor context for its children. Files get
// a simpler per-file call that sees sibling names from the same
// directory.
package classifier
