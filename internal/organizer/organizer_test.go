package organizer

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/storage"
	"github.com/courseshelf/courseshelf/pkg/types"
)

func newTestOrganizer(t *testing.T) (*Organizer, *storage.CourseDB) {
	t.Helper()
	db, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	oracle, err := classifier.NewHeuristicClassifier(nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	return New(db, oracle, logger, Options{Threshold: 0.75}), db
}

func writeCourseFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func TestRunProducesMappings(t *testing.T) {
	root := t.TempDir()
	writeCourseFile(t, root, "lecture/week1/intro.mp4")
	writeCourseFile(t, root, "lecture/week1/notes.pdf")
	writeCourseFile(t, root, "homework/hw1.ipynb")

	org, db := newTestOrganizer(t)
	result, err := org.Run(context.Background(), root)
	require.NoError(t, err)

	require.NotEmpty(t, result.Mappings)
	byName := make(map[string]types.FileMapping)
	for src, m := range result.Mappings {
		byName[path.Base(src)] = m
	}
	hw, ok := byName["hw1.ipynb"]
	require.True(t, ok)
	assert.Equal(t, string(types.CategoryPractice), hw.Category)

	runs, err := db.ListRuns(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, len(result.Mappings), runs[0].TotalMappings)
	assert.Equal(t, classifier.ProviderHeuristic, runs[0].Provider)
	assert.NotEmpty(t, runs[0].RunUUID)
}

func TestRunAttachesDatabaseDescriptions(t *testing.T) {
	root := t.TempDir()
	writeCourseFile(t, root, "homework/hw1.ipynb")

	org, db := newTestOrganizer(t)
	require.NoError(t, db.UpsertFile(context.Background(), &storage.FileEntry{
		FileName:    "hw1.ipynb",
		Description: "graded exercises on recursion",
	}))

	result, err := org.Run(context.Background(), root)
	require.NoError(t, err)
	require.NotEmpty(t, result.Mappings)
}

func TestRunRejectsBadSource(t *testing.T) {
	org, _ := newTestOrganizer(t)

	_, err := org.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = org.Run(context.Background(), file)
	assert.Error(t, err)
}

func TestRunEmptyCourse(t *testing.T) {
	root := t.TempDir()
	org, _ := newTestOrganizer(t)

	result, err := org.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
	assert.Empty(t, result.Classifications)
}

func TestRunHonorsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeCourseFile(t, root, "lecture/top.mp4")
	writeCourseFile(t, root, "lecture/deep/nested/far.mp4")

	org, _ := newTestOrganizer(t)
	org.opts.MaxDepth = 2

	result, err := org.Run(context.Background(), root)
	require.NoError(t, err)
	for src := range result.Mappings {
		assert.NotEqual(t, "far.mp4", path.Base(src))
	}
}
