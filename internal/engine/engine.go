package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/tree"
	"github.com/courseshelf/courseshelf/pkg/types"
)

// DefaultConfidenceThreshold is the minimum confidence for a folder
// decision to apply to its whole subtree.
const DefaultConfidenceThreshold = 0.75

// MaxAncestorDepth caps how many ancestor descriptions accumulate on
// the way down.
const MaxAncestorDepth = 10

// MaxConcatDescChars caps the concatenated-descriptions prompt block.
const MaxConcatDescChars = 6000

// DescriptionPropagator receives the folder description produced by a
// confident folder decision, for persisting alongside the affected
// files. Failures are logged, never fatal.
type DescriptionPropagator interface {
	PropagateFolderDescription(ctx context.Context, fileNames []string, description string) error
}

// Result is the complete output of one traversal.
type Result struct {
	// Classifications holds the terminal record for every classified
	// folder and file, keyed by relative path.
	Classifications map[string]types.Classification

	// FolderDecisions holds the raw decision for every folder the
	// oracle was asked about.
	FolderDecisions map[string]types.Decision

	// SkippedFolders lists folders ruled out of the reorganization.
	SkippedFolders []string

	// Mappings holds the planned move for every surviving file,
	// keyed by source path.
	Mappings map[string]types.FileMapping

	FilesViaFolder  int
	FilesIndividual int
}

// Engine drives the traversal.
type Engine struct {
	classifier classifier.Classifier
	propagator DescriptionPropagator
	threshold  float64
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold overrides the confidence threshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// WithPropagator sets the folder-description sink.
func WithPropagator(p DescriptionPropagator) Option {
	return func(e *Engine) { e.propagator = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine.
func New(c classifier.Classifier, opts ...Option) *Engine {
	e := &Engine{
		classifier: c,
		threshold:  DefaultConfidenceThreshold,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// queueItem is one pending unit of work. Exactly one of folder and
// file is set.
type queueItem struct {
	folder *types.FolderNode
	file   *types.FileRecord
}

func (q queueItem) key() string {
	if q.folder != nil {
		return q.folder.Path
	}
	return q.file.SourcePath
}

// traversal carries the mutable state of one run.
type traversal struct {
	engine    *Engine
	result    *Result
	queue     []queueItem
	seen      map[string]bool
	ancestors map[string][]string
	siblings  map[string][]string
}

// Run classifies the tree rooted at root and returns the plan. The
// root itself is never classified; its children and files seed the
// queue.
func (e *Engine) Run(ctx context.Context, root *types.FolderNode) (*Result, error) {
	t := &traversal{
		engine: e,
		result: &Result{
			Classifications: make(map[string]types.Classification),
			FolderDecisions: make(map[string]types.Decision),
			Mappings:        make(map[string]types.FileMapping),
		},
		seen:      make(map[string]bool),
		ancestors: make(map[string][]string),
		siblings:  make(map[string][]string),
	}

	for _, child := range root.Children {
		t.ancestors[child.Path] = nil
		t.queue = append(t.queue, queueItem{folder: child})
	}
	t.enqueueFiles(root)

	for len(t.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := t.queue[0]
		t.queue = t.queue[1:]

		if t.seen[item.key()] {
			continue
		}
		t.seen[item.key()] = true

		var err error
		if item.folder != nil {
			err = t.processFolder(ctx, item.folder)
		} else {
			err = t.processFile(ctx, item.file)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, c := range t.result.Classifications {
		if c.Level == types.LevelFolder && c.ParentFolder != "" {
			t.result.FilesViaFolder++
		}
		if c.Level == types.LevelFile {
			t.result.FilesIndividual++
		}
	}

	return t.result, nil
}

// enqueueFiles queues a folder's immediate files and records their
// sibling names for file-level prompts.
func (t *traversal) enqueueFiles(node *types.FolderNode) {
	names := node.FileNames()
	for i := range node.Files {
		f := &node.Files[i]
		siblings := make([]string, 0, len(names)-1)
		for _, name := range names {
			if name != f.FileName {
				siblings = append(siblings, name)
			}
		}
		t.siblings[f.SourcePath] = siblings
		t.queue = append(t.queue, queueItem{file: f})
	}
}

func (t *traversal) processFolder(ctx context.Context, node *types.FolderNode) error {
	myAncestors := t.ancestors[node.Path]

	files := tree.CollectFiles(node)
	stats := tree.ComputeStats(node)
	concat := tree.ConcatDescriptions(files, MaxConcatDescChars)

	decision, err := t.engine.classifier.ClassifyFolder(ctx, classifier.FolderRequest{
		Path:               node.Path,
		Name:               node.Name,
		Stats:              stats,
		Files:              files,
		ConcatDescriptions: concat,
		Ancestors:          myAncestors,
	})
	if err != nil {
		return fmt.Errorf("classify folder %s: %w", node.Path, err)
	}
	t.result.FolderDecisions[node.Path] = decision

	t.engine.logger.Info("folder classified",
		"path", node.Path,
		"category", decision.Category,
		"confidence", decision.Confidence,
		"mixed", decision.IsMixed)

	childAncestors := myAncestors
	if decision.FolderDescription != "" && len(myAncestors) < MaxAncestorDepth {
		childAncestors = make([]string, len(myAncestors), len(myAncestors)+1)
		copy(childAncestors, myAncestors)
		childAncestors = append(childAncestors, decision.FolderDescription)
	}

	// A confident skip removes the whole subtree from the plan.
	if decision.Category == types.CategorySkip && decision.Confidence >= t.engine.threshold {
		t.result.SkippedFolders = append(t.result.SkippedFolders, node.Path)
		t.result.Classifications[node.Path] = types.Classification{
			Path:                 node.Path,
			Category:             types.CategorySkip,
			Confidence:           decision.Confidence,
			Reason:               decision.Reason,
			Level:                types.LevelFolder,
			AncestorDescriptions: myAncestors,
		}
		t.engine.logger.Info("pruning subtree", "path", node.Path)
		return nil
	}

	descend := !decision.IsConfident(t.engine.threshold)

	// An unconfident skip still descends: children get their own say.
	if decision.Category == types.CategorySkip {
		t.result.SkippedFolders = append(t.result.SkippedFolders, node.Path)
		descend = true
	}

	t.result.Classifications[node.Path] = types.Classification{
		Path:                 node.Path,
		Category:             decision.Category,
		Confidence:           decision.Confidence,
		Reason:               decision.Reason,
		Level:                types.LevelFolder,
		AncestorDescriptions: myAncestors,
		Descended:            descend,
	}

	if descend {
		t.engine.logger.Info("descending", "path", node.Path)
		for _, child := range node.Children {
			t.ancestors[child.Path] = childAncestors
			t.queue = append(t.queue, queueItem{folder: child})
		}
		t.ancestors[node.Path] = childAncestors
		t.enqueueFiles(node)
		return nil
	}

	t.engine.logger.Info("assigning subtree",
		"path", node.Path, "files", len(files))

	if decision.FolderDescription != "" && t.engine.propagator != nil {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.FileName
		}
		if err := t.engine.propagator.PropagateFolderDescription(ctx, names, decision.FolderDescription); err != nil {
			t.engine.logger.Warn("description propagation failed",
				"path", node.Path, "error", err)
		}
	}

	for _, f := range files {
		t.result.Classifications[f.SourcePath] = types.Classification{
			Path:                 f.SourcePath,
			Category:             decision.Category,
			Confidence:           decision.Confidence,
			Reason:               fmt.Sprintf("Inherited from folder '%s': %s", node.Path, decision.Reason),
			Level:                types.LevelFolder,
			ParentFolder:         node.Path,
			AncestorDescriptions: childAncestors,
		}
		if err := t.addMapping(f.SourcePath, decision.Category, decision.Reason); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) processFile(ctx context.Context, f *types.FileRecord) error {
	ancestors := t.ancestors[f.FolderPath]

	decision, err := t.engine.classifier.ClassifyFile(ctx, classifier.FileRequest{
		Path:        f.SourcePath,
		Name:        f.FileName,
		FolderPath:  f.FolderPath,
		Description: f.Description,
		Ancestors:   ancestors,
		Siblings:    t.siblings[f.SourcePath],
	})
	if err != nil {
		return fmt.Errorf("classify file %s: %w", f.SourcePath, err)
	}

	t.engine.logger.Info("file classified",
		"path", f.SourcePath,
		"category", decision.Category,
		"confidence", decision.Confidence)

	// Skipped files silently fall out of the plan.
	if decision.Category == types.CategorySkip {
		return nil
	}

	t.result.Classifications[f.SourcePath] = types.Classification{
		Path:                 f.SourcePath,
		Category:             decision.Category,
		Confidence:           decision.Confidence,
		Reason:               decision.Reason,
		Level:                types.LevelFile,
		AncestorDescriptions: ancestors,
	}
	return t.addMapping(f.SourcePath, decision.Category, decision.Reason)
}

// addMapping records the planned move for one file. A second mapping
// for the same source is an internal defect, not an input problem.
func (t *traversal) addMapping(sourcePath string, category types.Category, reason string) error {
	if _, exists := t.result.Mappings[sourcePath]; exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateMapping, sourcePath)
	}

	top := types.TopLevelFolder(sourcePath)
	tail := types.PathTail(top, sourcePath)
	t.result.Mappings[sourcePath] = types.FileMapping{
		SourceRel: sourcePath,
		DestRel:   types.DestPath(category, top, tail),
		TopFolder: top,
		Category:  category.String(),
		Reason:    reason,
	}
	return nil
}
