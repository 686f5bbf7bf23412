package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/tree"
	"github.com/courseshelf/courseshelf/pkg/types"
)

// stubClassifier replays scripted decisions and counts calls per path.
type stubClassifier struct {
	folders     map[string]types.Decision
	files       map[string]types.Decision
	folderCalls map[string]int
	fileCalls   map[string]int
	lastFolder  map[string]classifier.FolderRequest
	lastFile    map[string]classifier.FileRequest
}

func newStub() *stubClassifier {
	return &stubClassifier{
		folders:     make(map[string]types.Decision),
		files:       make(map[string]types.Decision),
		folderCalls: make(map[string]int),
		fileCalls:   make(map[string]int),
		lastFolder:  make(map[string]classifier.FolderRequest),
		lastFile:    make(map[string]classifier.FileRequest),
	}
}

func (s *stubClassifier) ClassifyFolder(_ context.Context, req classifier.FolderRequest) (types.Decision, error) {
	s.folderCalls[req.Path]++
	s.lastFolder[req.Path] = req
	if d, ok := s.folders[req.Path]; ok {
		return d, nil
	}
	return types.Decision{Category: types.CategorySupport, Confidence: 0.3}, nil
}

func (s *stubClassifier) ClassifyFile(_ context.Context, req classifier.FileRequest) (types.Decision, error) {
	s.fileCalls[req.Path]++
	s.lastFile[req.Path] = req
	if d, ok := s.files[req.Path]; ok {
		return d, nil
	}
	return types.Decision{Category: types.CategoryStudy, Confidence: 0.8}, nil
}

func (s *stubClassifier) Provider() string { return "stub" }
func (s *stubClassifier) Model() string    { return "stub" }
func (s *stubClassifier) Close() error     { return nil }

type recordingPropagator struct {
	calls []propagation
	err   error
}

type propagation struct {
	fileNames   []string
	description string
}

func (p *recordingPropagator) PropagateFolderDescription(_ context.Context, fileNames []string, description string) error {
	p.calls = append(p.calls, propagation{fileNames, description})
	return p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunConfidentFolderAssignsSubtree(t *testing.T) {
	root := tree.Build([]string{
		"hw/hw1/solution.py",
		"hw/hw2/solution.py",
	}, nil)

	stub := newStub()
	stub.folders["hw"] = types.Decision{
		Category:          types.CategoryPractice,
		Confidence:        0.9,
		Reason:            "Homework assignments.",
		FolderDescription: "Graded homework sets.",
	}

	prop := &recordingPropagator{}
	e := New(stub, WithLogger(quietLogger()), WithPropagator(prop))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	// One call for hw, none for its children or files.
	assert.Equal(t, 1, stub.folderCalls["hw"])
	assert.Equal(t, 0, stub.folderCalls["hw/hw1"])
	assert.Empty(t, stub.fileCalls)

	folder := result.Classifications["hw"]
	assert.Equal(t, types.CategoryPractice, folder.Category)
	assert.True(t, folder.Terminal())

	file := result.Classifications["hw/hw1/solution.py"]
	assert.Equal(t, types.CategoryPractice, file.Category)
	assert.Equal(t, types.LevelFolder, file.Level)
	assert.Equal(t, "hw", file.ParentFolder)
	assert.Contains(t, file.Reason, "Inherited from folder 'hw'")

	m := result.Mappings["hw/hw1/solution.py"]
	assert.Equal(t, "practice/hw/hw1/solution.py", m.DestRel)

	assert.Equal(t, 2, result.FilesViaFolder)
	assert.Equal(t, 0, result.FilesIndividual)

	require.Len(t, prop.calls, 1)
	assert.Equal(t, "Graded homework sets.", prop.calls[0].description)
	assert.ElementsMatch(t, []string{"solution.py", "solution.py"}, prop.calls[0].fileNames)
}

func TestRunConfidentSkipPrunesSubtree(t *testing.T) {
	root := tree.Build([]string{
		"build/out.o",
		"build/deep/cache.tmp",
		"lecture/week1.pdf",
	}, nil)

	stub := newStub()
	stub.folders["build"] = types.Decision{
		Category:   types.CategorySkip,
		Confidence: 0.95,
		Reason:     "Build artifacts.",
	}
	stub.folders["lecture"] = types.Decision{
		Category: types.CategoryStudy, Confidence: 0.9, Reason: "Slides.",
	}

	e := New(stub, WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"build"}, result.SkippedFolders)
	assert.Equal(t, 0, stub.folderCalls["build/deep"])
	assert.Empty(t, stub.fileCalls)

	// The folder itself gets a terminal record, its files get nothing.
	assert.Contains(t, result.Classifications, "build")
	assert.NotContains(t, result.Classifications, "build/out.o")
	assert.NotContains(t, result.Mappings, "build/out.o")
	assert.True(t, result.Classifications["build"].Terminal())

	assert.Contains(t, result.Mappings, "lecture/week1.pdf")
}

func TestRunUnconfidentFolderDescends(t *testing.T) {
	root := tree.Build([]string{
		"misc/hw1.pdf",
		"misc/slides.pdf",
	}, nil)

	stub := newStub()
	stub.folders["misc"] = types.Decision{
		Category:          types.CategorySupport,
		Confidence:        0.5,
		Reason:            "Unclear.",
		FolderDescription: "Mixed bag of course files.",
	}
	stub.files["misc/hw1.pdf"] = types.Decision{
		Category: types.CategoryPractice, Confidence: 0.9, Reason: "Homework.",
	}
	stub.files["misc/slides.pdf"] = types.Decision{
		Category: types.CategoryStudy, Confidence: 0.9, Reason: "Slides.",
	}

	e := New(stub, WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	// Provisional folder record, terminal file records.
	folder := result.Classifications["misc"]
	assert.False(t, folder.Terminal())

	assert.Equal(t, 1, stub.fileCalls["misc/hw1.pdf"])
	assert.Equal(t, 1, stub.fileCalls["misc/slides.pdf"])
	assert.Equal(t, types.LevelFile, result.Classifications["misc/hw1.pdf"].Level)

	assert.Equal(t, "practice/misc/hw1.pdf", result.Mappings["misc/hw1.pdf"].DestRel)
	assert.Equal(t, "study/lecture/misc/slides.pdf", result.Mappings["misc/slides.pdf"].DestRel)

	assert.Equal(t, 0, result.FilesViaFolder)
	assert.Equal(t, 2, result.FilesIndividual)

	// Files saw the folder description as ancestor context and their
	// sibling's name.
	req := stub.lastFile["misc/hw1.pdf"]
	assert.Equal(t, []string{"Mixed bag of course files."}, req.Ancestors)
	assert.Equal(t, []string{"slides.pdf"}, req.Siblings)
}

func TestRunMixedFolderDescendsDespiteConfidence(t *testing.T) {
	root := tree.Build([]string{"mix/a.pdf"}, nil)

	stub := newStub()
	stub.folders["mix"] = types.Decision{
		Category:   types.CategoryStudy,
		Confidence: 0.95,
		IsMixed:    true,
		Reason:     "Half homework, half slides.",
	}

	e := New(stub, WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	assert.False(t, result.Classifications["mix"].Terminal())
	assert.Equal(t, 1, stub.fileCalls["mix/a.pdf"])
}

func TestRunUnconfidentSkipDescends(t *testing.T) {
	root := tree.Build([]string{"old/hw1.pdf"}, nil)

	stub := newStub()
	stub.folders["old"] = types.Decision{
		Category:   types.CategorySkip,
		Confidence: 0.5,
		Reason:     "Probably stale.",
	}
	stub.files["old/hw1.pdf"] = types.Decision{
		Category: types.CategoryPractice, Confidence: 0.9, Reason: "Homework.",
	}

	e := New(stub, WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	// Recorded as skipped, but the child still got its own call.
	assert.Equal(t, []string{"old"}, result.SkippedFolders)
	assert.False(t, result.Classifications["old"].Terminal())
	assert.Contains(t, result.Mappings, "old/hw1.pdf")
}

func TestRunSkippedFileDropsSilently(t *testing.T) {
	root := tree.Build([]string{"notes.log", "syllabus.pdf"}, nil)

	stub := newStub()
	stub.files["notes.log"] = types.Decision{
		Category: types.CategorySkip, Confidence: 0.9, Reason: "Log file.",
	}
	stub.files["syllabus.pdf"] = types.Decision{
		Category: types.CategorySupport, Confidence: 0.9, Reason: "Syllabus.",
	}

	e := New(stub, WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	assert.NotContains(t, result.Classifications, "notes.log")
	assert.NotContains(t, result.Mappings, "notes.log")
	assert.Empty(t, result.SkippedFolders)

	assert.Equal(t, "support/syllabus.pdf", result.Mappings["syllabus.pdf"].DestRel)
}

func TestRunEachEntityClassifiedOnce(t *testing.T) {
	root := tree.Build([]string{
		"a/x/1.pdf",
		"a/y/2.pdf",
		"a/3.pdf",
		"b/4.pdf",
	}, nil)

	stub := newStub() // everything descends; every file classified individually
	e := New(stub, WithLogger(quietLogger()))
	_, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	for path, n := range stub.folderCalls {
		assert.Equal(t, 1, n, "folder %s", path)
	}
	for path, n := range stub.fileCalls {
		assert.Equal(t, 1, n, "file %s", path)
	}
	assert.Len(t, stub.folderCalls, 4)
	assert.Len(t, stub.fileCalls, 4)
}

func TestRunAncestorDepthCapped(t *testing.T) {
	// A chain deeper than the cap still only passes MaxAncestorDepth
	// descriptions down.
	paths := []string{"d1/d2/d3/d4/d5/d6/d7/d8/d9/d10/d11/d12/leaf.pdf"}
	root := tree.Build(paths, nil)

	stub := newStub()
	// Every folder descends and contributes a description.
	dirs := []string{
		"d1", "d1/d2", "d1/d2/d3", "d1/d2/d3/d4", "d1/d2/d3/d4/d5",
		"d1/d2/d3/d4/d5/d6", "d1/d2/d3/d4/d5/d6/d7",
		"d1/d2/d3/d4/d5/d6/d7/d8", "d1/d2/d3/d4/d5/d6/d7/d8/d9",
		"d1/d2/d3/d4/d5/d6/d7/d8/d9/d10",
		"d1/d2/d3/d4/d5/d6/d7/d8/d9/d10/d11",
		"d1/d2/d3/d4/d5/d6/d7/d8/d9/d10/d11/d12",
	}
	for _, d := range dirs {
		stub.folders[d] = types.Decision{
			Category:          types.CategorySupport,
			Confidence:        0.3,
			Reason:            "Descend.",
			FolderDescription: "Description of " + d,
		}
	}

	e := New(stub, WithLogger(quietLogger()))
	_, err := e.Run(context.Background(), root)
	require.NoError(t, err)

	req := stub.lastFile[paths[0]]
	assert.Len(t, req.Ancestors, MaxAncestorDepth)
	assert.Equal(t, "Description of d1", req.Ancestors[0])
}

func TestRunPropagationFailureIsNonFatal(t *testing.T) {
	root := tree.Build([]string{"hw/hw1.pdf"}, nil)

	stub := newStub()
	stub.folders["hw"] = types.Decision{
		Category:          types.CategoryPractice,
		Confidence:        0.9,
		Reason:            "Homework.",
		FolderDescription: "Homework sets.",
	}

	prop := &recordingPropagator{err: assert.AnError}
	e := New(stub, WithLogger(quietLogger()), WithPropagator(prop))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, result.Mappings, "hw/hw1.pdf")
}

func TestRunCancelledContext(t *testing.T) {
	root := tree.Build([]string{"hw/hw1.pdf"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(newStub(), WithLogger(quietLogger()))
	_, err := e.Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyTree(t *testing.T) {
	root := tree.Build(nil, nil)
	e := New(newStub(), WithLogger(quietLogger()))
	result, err := e.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Classifications)
	assert.Empty(t, result.Mappings)
}
