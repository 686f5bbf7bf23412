package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Call types recorded in the debug log.
const (
	CallTypeFolder = "folder_classification"
	CallTypeFile   = "file_classification"
)

// CallEntry records one provider call for offline inspection.
type CallEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	CallType     string    `json:"call_type"`
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	RawOutput    string    `json:"raw_output,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// CallLog accumulates provider calls. All methods are safe for
// concurrent use and safe on a nil receiver, so providers can record
// unconditionally.
type CallLog struct {
	mu      sync.Mutex
	entries []CallEntry
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Record appends one call.
func (l *CallLog) Record(callType, system, user, raw string, err error) {
	if l == nil {
		return
	}
	entry := CallEntry{
		Timestamp:    time.Now(),
		CallType:     callType,
		SystemPrompt: system,
		UserPrompt:   user,
		RawOutput:    raw,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded calls.
func (l *CallLog) Entries() []CallEntry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CallEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Save writes the log as indented JSON. An empty log writes nothing.
func (l *CallLog) Save(path string) error {
	entries := l.Entries()
	if len(entries) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal call log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write call log: %w", err)
	}
	return nil
}
