// Package report renders a traversal result as a Markdown report and
// a machine-readable plan JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/engine"
	"github.com/courseshelf/courseshelf/pkg/types"
)

// Meta describes the run the report covers.
type Meta struct {
	SourceRoot string
	Provider   string
	Model      string
	Threshold  float64
}

// WriteMarkdown writes the full Markdown report to path.
func WriteMarkdown(path string, result *engine.Result, calls []classifier.CallEntry, meta Meta) error {
	var b strings.Builder

	b.WriteString("# Course Reorganization Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Source: `%s`  \nProvider: %s (%s)  \nThreshold: %.2f\n\n",
		meta.SourceRoot, meta.Provider, meta.Model, meta.Threshold)

	writeSummary(&b, result)
	writeFolderDecisions(&b, result)
	writeFolderDetails(&b, result)
	writeCallLog(&b, calls)
	writeDestTree(&b, result)
	writeMappings(&b, result)
	writeSkipped(&b, result)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeSummary(b *strings.Builder, result *engine.Result) {
	b.WriteString("## 1. Summary\n\n")

	catCounts := make(map[types.Category]int)
	for _, c := range result.Classifications {
		catCounts[c.Category]++
	}

	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	for _, cat := range types.Categories {
		fmt.Fprintf(b, "| %s items | %d |\n", cat, catCounts[cat])
	}
	fmt.Fprintf(b, "| Files via folder | %d |\n", result.FilesViaFolder)
	fmt.Fprintf(b, "| Files individually | %d |\n", result.FilesIndividual)
	fmt.Fprintf(b, "| Skipped folders | %d |\n", len(result.SkippedFolders))
	fmt.Fprintf(b, "| Total mappings | %d |\n\n", len(result.Mappings))
}

func writeFolderDecisions(b *strings.Builder, result *engine.Result) {
	b.WriteString("## 2. Folder Decisions\n\n")
	b.WriteString("| Folder | Category | Confidence | Mixed | Description |\n")
	b.WriteString("|--------|----------|------------|-------|-------------|\n")

	for _, path := range sortedKeys(result.FolderDecisions) {
		dec := result.FolderDecisions[path]
		desc := dec.FolderDescription
		if desc == "" {
			desc = "-"
		}
		if len(desc) > 60 {
			desc = desc[:60]
		}
		mixed := "no"
		if dec.IsMixed {
			mixed = "yes"
		}
		fmt.Fprintf(b, "| `%s` | **%s** | %.2f | %s | %s |\n",
			path, dec.Category, dec.Confidence, mixed, desc)
	}
	b.WriteString("\n")
}

func writeFolderDetails(b *strings.Builder, result *engine.Result) {
	b.WriteString("## 3. Folder Classification Details\n\n")
	for _, path := range sortedKeys(result.FolderDecisions) {
		dec := result.FolderDecisions[path]
		fmt.Fprintf(b, "### `%s`: %s (%.2f)\n\n", path, dec.Category, dec.Confidence)
		if dec.FolderDescription != "" {
			fmt.Fprintf(b, "**Summary:** %s\n\n", dec.FolderDescription)
		}
		b.WriteString("**Reasoning:**\n```\n")
		b.WriteString(dec.Reason)
		b.WriteString("\n```\n\n")
	}
}

func writeCallLog(b *strings.Builder, calls []classifier.CallEntry) {
	b.WriteString("## 4. Classifier Call Log\n\n")
	fmt.Fprintf(b, "Total calls: %d\n\n", len(calls))

	for i, entry := range calls {
		fmt.Fprintf(b, "### Call %d: %s (%s)\n\n",
			i+1, entry.CallType, entry.Timestamp.Format(time.RFC3339))

		fmt.Fprintf(b, "<details>\n<summary>User Prompt (%d chars)</summary>\n\n```\n%s\n```\n</details>\n\n",
			len(entry.UserPrompt), entry.UserPrompt)

		if entry.RawOutput != "" {
			fmt.Fprintf(b, "<details>\n<summary>Output</summary>\n\n```\n%s\n```\n</details>\n\n", entry.RawOutput)
		}
		if entry.Error != "" {
			fmt.Fprintf(b, "**ERROR:** `%s`\n\n", entry.Error)
		}
	}
}

func writeDestTree(b *strings.Builder, result *engine.Result) {
	b.WriteString("## 5. Organized Destination Tree\n\n```\n")
	renderDestTree(b, buildDestTree(result), 0)
	b.WriteString("```\n\n")
}

func writeMappings(b *strings.Builder, result *engine.Result) {
	b.WriteString("## 6. File Mappings\n\n")
	b.WriteString("| Source | Destination | Category |\n|--------|-------------|----------|\n")
	for _, src := range sortedKeys(result.Mappings) {
		m := result.Mappings[src]
		fmt.Fprintf(b, "| `%s` | `%s` | %s |\n", m.SourceRel, m.DestRel, m.Category)
	}
	b.WriteString("\n")
}

func writeSkipped(b *strings.Builder, result *engine.Result) {
	if len(result.SkippedFolders) == 0 {
		return
	}
	b.WriteString("## 7. Skipped Folders\n\n")

	skipped := append([]string(nil), result.SkippedFolders...)
	sort.Strings(skipped)
	for _, folder := range skipped {
		reason := "-"
		if dec, ok := result.FolderDecisions[folder]; ok {
			reason = dec.Reason
			if len(reason) > 100 {
				reason = reason[:100] + "..."
			}
		}
		fmt.Fprintf(b, "- `%s`: %s\n", folder, reason)
	}
	b.WriteString("\n")
}

// destNode is one directory of the planned output tree.
type destNode struct {
	files    []string
	children map[string]*destNode
}

func newDestNode() *destNode {
	return &destNode{children: make(map[string]*destNode)}
}

func buildDestTree(result *engine.Result) *destNode {
	root := newDestNode()
	for _, m := range result.Mappings {
		parts := strings.Split(m.DestRel, "/")
		cur := root
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur.children[p]
			if !ok {
				next = newDestNode()
				cur.children[p] = next
			}
			cur = next
		}
		cur.files = append(cur.files, parts[len(parts)-1])
	}
	return root
}

func renderDestTree(b *strings.Builder, node *destNode, indent int) {
	pad := strings.Repeat("  ", indent)

	files := append([]string(nil), node.files...)
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(b, "%s%s\n", pad, f)
	}

	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "%s%s/\n", pad, name)
		renderDestTree(b, node.children[name], indent+1)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// plan is the JSON export shape.
type plan struct {
	FolderDecisions map[string]planDecision `json:"folder_decisions"`
	SkippedFolders  []string                `json:"skipped_folders"`
	Mappings        []types.FileMapping     `json:"mappings"`
	Stats           planStats               `json:"stats"`
}

type planDecision struct {
	Category          string  `json:"category"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
	IsMixed           bool    `json:"is_mixed"`
	FolderDescription string  `json:"folder_description"`
}

type planStats struct {
	FilesViaFolder  int `json:"files_via_folder"`
	FilesIndividual int `json:"files_individual"`
	TotalMappings   int `json:"total_mappings"`
}

// WritePlanJSON writes the machine-readable plan to path. Mappings are
// sorted by source path so output is stable.
func WritePlanJSON(path string, result *engine.Result) error {
	p := plan{
		FolderDecisions: make(map[string]planDecision, len(result.FolderDecisions)),
		SkippedFolders:  result.SkippedFolders,
		Stats: planStats{
			FilesViaFolder:  result.FilesViaFolder,
			FilesIndividual: result.FilesIndividual,
			TotalMappings:   len(result.Mappings),
		},
	}
	if p.SkippedFolders == nil {
		p.SkippedFolders = []string{}
	}

	for folder, dec := range result.FolderDecisions {
		p.FolderDecisions[folder] = planDecision{
			Category:          dec.Category.String(),
			Confidence:        dec.Confidence,
			Reason:            dec.Reason,
			IsMixed:           dec.IsMixed,
			FolderDescription: dec.FolderDescription,
		}
	}

	p.Mappings = make([]types.FileMapping, 0, len(result.Mappings))
	for _, src := range sortedKeys(result.Mappings) {
		p.Mappings = append(p.Mappings, result.Mappings[src])
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}
