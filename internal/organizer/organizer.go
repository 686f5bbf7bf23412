// Package organizer orchestrates a full planning run: load the file
// index, scan the course directory, traverse, and record the run.
package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/engine"
	"github.com/courseshelf/courseshelf/internal/scanner"
	"github.com/courseshelf/courseshelf/internal/storage"
	"github.com/courseshelf/courseshelf/internal/tree"
)

// Options configures a planning run.
type Options struct {
	Threshold   float64
	MaxDepth    int
	ExcludeDirs []string
}

// Organizer runs the pipeline against one course database.
type Organizer struct {
	db     *storage.CourseDB
	oracle classifier.Classifier
	logger *slog.Logger
	opts   Options
}

// New creates an Organizer. logger may be nil.
func New(db *storage.CourseDB, oracle classifier.Classifier, logger *slog.Logger, opts Options) *Organizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{db: db, oracle: oracle, logger: logger, opts: opts}
}

// Run plans the reorganization of sourceRoot and records the run in
// the database.
func (o *Organizer) Run(ctx context.Context, sourceRoot string) (*engine.Result, error) {
	info, err := os.Stat(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", sourceRoot)
	}

	// The DB read and the disk scan are independent.
	var (
		index map[string]storage.FileEntry
		paths []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		index, err = o.db.LoadFileIndex(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		paths, err = scanner.ListRelativePaths(sourceRoot, scanner.Options{
			ExcludeDirs: o.opts.ExcludeDirs,
			MaxDepth:    o.opts.MaxDepth,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Info("scan complete", "files", len(paths), "indexed", len(index))
	o.logSyncWarnings(index, paths)

	descriptions := make(map[string]string, len(index))
	for name, entry := range index {
		descriptions[name] = entry.Description
	}
	root := tree.Build(paths, descriptions)
	o.logger.Info("tree built", "top_level_folders", len(root.Children))

	eng := engine.New(o.oracle,
		engine.WithThreshold(o.opts.Threshold),
		engine.WithPropagator(o.db),
		engine.WithLogger(o.logger))

	result, err := eng.Run(ctx, root)
	if err != nil {
		return nil, err
	}

	run := &storage.Run{
		SourceRoot:      sourceRoot,
		Provider:        o.oracle.Provider(),
		Model:           o.oracle.Model(),
		Threshold:       o.opts.Threshold,
		TotalMappings:   len(result.Mappings),
		FilesViaFolder:  result.FilesViaFolder,
		FilesIndividual: result.FilesIndividual,
		SkippedFolders:  len(result.SkippedFolders),
	}
	// Run history is best effort.
	if err := o.db.RecordRun(ctx, run); err != nil {
		o.logger.Warn("failed to record run", "error", err)
	}

	o.logger.Info("run complete",
		"mappings", len(result.Mappings),
		"via_folder", result.FilesViaFolder,
		"individual", result.FilesIndividual,
		"skipped_folders", len(result.SkippedFolders))
	return result, nil
}

// logSyncWarnings reports filename mismatches between the database and
// the directory scan.
func (o *Organizer) logSyncWarnings(index map[string]storage.FileEntry, paths []string) {
	onDisk := make(map[string]bool, len(paths))
	for _, p := range paths {
		onDisk[path.Base(p)] = true
	}

	var missingInDB, staleInDB []string
	for name := range onDisk {
		if _, ok := index[name]; !ok {
			missingInDB = append(missingInDB, name)
		}
	}
	for name := range index {
		if !onDisk[name] {
			staleInDB = append(staleInDB, name)
		}
	}
	sort.Strings(missingInDB)
	sort.Strings(staleInDB)

	if len(missingInDB) > 0 {
		o.logger.Warn("files on disk with no database entry",
			"count", len(missingInDB), "examples", firstN(missingInDB, 5))
	}
	if len(staleInDB) > 0 {
		o.logger.Warn("database entries with no file on disk",
			"count", len(staleInDB), "examples", firstN(staleInDB, 5))
	}
	if len(missingInDB) == 0 && len(staleInDB) == 0 {
		o.logger.Info("database and disk are in sync")
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
