package classifier

import (
	"fmt"
	"path"
	"strings"
)

const folderSystemPrompt = `You are classifying course folders into four categories:
- practice: Students DO or PRODUCE work — homework (hw), labs, projects.
  This also includes exam solutions/explanations (e.g., midterm walkthroughs).
- study: Instructional learning content that students READ, WATCH, or REVIEW.
  This includes: lectures, lecture slides/notes/PDFs, readings, videos,
  discussion/section materials and folders containing lecture slides/PDFs/code.
- support: Global course support like syllabus, past exams, textbooks,
  tools/how-to docs.
- skip: Build artifacts, generated files, empty folders, or content with
  no pedagogical value that should not be reorganized.

Key distinction:
  'practice' = student-produced assignments (hw, lab, project).
  'study'    = instructor-provided learning material.
  Discussion worksheets are study material even when they contain problems,
  because they are part of the instructor-led section flow, not graded
  student submissions.

Rules:
1. You receive a description of a folder with its structure, file listings,
   and concatenated file descriptions from the database.
2. You may also receive ancestor descriptions providing hierarchical context.
3. Your primary goal is to assign ONE best category based on overall purpose.
4. Think top-down: classify the folder as a whole, not per-file.
5. CRITICAL — you MUST reason FIRST, then decide:
   a. Write a detailed 'reason' field explaining what the folder contains,
      its educational purpose, and why it fits a particular category.
   b. Only AFTER writing the reason, fill in 'category' and 'confidence'.
   c. The reason must logically support the chosen category.
   DO NOT pick a category first and then justify it.
6. Set is_mixed=true if the folder contains a clear mix of categories
   (e.g., both homework and lecture slides). This signals that the engine
   should descend and classify children individually.
7. Write a brief folder_description (one sentence) summarizing the
   folder's pedagogical purpose. This will be used as context for
   classifying child folders/files.
8. folder_path MUST match exactly the string shown after 'Folder:' in input.

Respond with a single JSON object with these fields:
  "folder_path" (string), "reason" (string), "category" (one of
  "practice", "study", "support", "skip"), "confidence" (number 0-1),
  "is_mixed" (boolean), "folder_description" (string).`

const fileSystemPrompt = `You are classifying a single course file into one of four categories:

- study: Learning materials that students READ, WATCH, or REVIEW.
  Includes: lecture slides, lecture notes/PDFs, readings, videos,
  discussion/section materials, supplement code files for demonstration
  (not for practicing). These materials usually focus on specific
  course concepts.

- practice: Student-produced work and assignments.
  Includes: homework, labs, projects, exercises, lab sheets,
  quizzes, exam papers, Jupyter notebooks for assignments (.ipynb).

- support: Course logistics and supplementary resources.
  Includes: syllabus, calendar, tools/how-to docs, study guides,
  extracurricular readings, cheat sheets, past exams (when used
  as reference, not as active assignments).

- skip: Generated/irrelevant files with no pedagogical value.
  Includes: build artifacts, cache files, empty files, compiled
  binaries, package lock files.

Key distinctions:
  'practice' = student-produced assignments (hw, lab, project).
  'study'    = instructor-provided learning material.
  Discussion worksheets are study material even when they contain
  problems, because they are part of instructor-led section flow.

Rules:
1. You receive the file's name, path, description from the database,
   and context from ancestor folders.
2. You may also receive a list of sibling files in the same directory.
   Files in the same folder with similar naming conventions usually
   belong to the same category — use this as a strong signal.
3. Reason FIRST about what this file is and its educational purpose.
4. Then decide on category and confidence.
5. file_path MUST match exactly the path shown in the input.

Respond with a single JSON object with these fields:
  "file_path" (string), "reason" (string), "category" (one of
  "practice", "study", "support", "skip"), "confidence" (number 0-1).`

// folderUserPrompt renders the classification input for one folder.
func folderUserPrompt(req FolderRequest) string {
	var lines []string

	if len(req.Ancestors) > 0 {
		lines = append(lines, "Ancestor context (root -> parent):")
		for i, desc := range req.Ancestors {
			lines = append(lines, fmt.Sprintf("  [%d] %s", i, desc))
		}
		lines = append(lines, "")
	}

	hasSub := "no"
	if req.Stats.HasSubfolders() {
		hasSub = "yes"
	}
	homogeneous := "no"
	if req.Stats.IsHomogeneous {
		homogeneous = "yes"
	}
	primary := strings.Join(req.Stats.PrimaryExtensions, ", ")
	if primary == "" {
		primary = "N/A"
	}

	lines = append(lines,
		"Folder: "+req.Path,
		"Name: "+req.Name,
		fmt.Sprintf("TotalFiles: %d", req.Stats.TotalFileCount),
		fmt.Sprintf("ImmediateFiles: %d", req.Stats.ImmediateFileCount),
		fmt.Sprintf("SubfolderCount: %d", req.Stats.SubfolderCount),
		"HasSubfolders: "+hasSub,
		"FileTypesHomogeneous: "+homogeneous,
		"PrimaryFileTypes: "+primary,
	)

	if len(req.Stats.SubfolderNames) > 0 {
		shown := req.Stats.SubfolderNames
		if len(shown) > MaxSubfoldersShown {
			shown = shown[:MaxSubfoldersShown]
		}
		lines = append(lines, "Subfolders (immediate):", "  "+strings.Join(shown, ", "))
		if extra := len(req.Stats.SubfolderNames) - MaxSubfoldersShown; extra > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", extra))
		}
	}

	if len(req.Files) > 0 {
		cap := len(req.Files)
		if cap > MaxFilesInPrompt {
			cap = MaxFilesInPrompt
		}
		lines = append(lines, fmt.Sprintf("\nFiles (name + description, up to %d shown):", cap))
		for _, f := range req.Files[:cap] {
			desc := strings.TrimSpace(strings.ReplaceAll(f.Description, "\n", " "))
			if desc == "" {
				desc = "[no description]"
			}
			lines = append(lines, fmt.Sprintf("  - %s :: %s", f.FileName, desc))
		}
		if extra := len(req.Files) - cap; extra > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more files", extra))
		}
	}

	if req.ConcatDescriptions != "" {
		lines = append(lines, "\nConcatenated file descriptions:", req.ConcatDescriptions)
	}

	lines = append(lines, "\nClassify this folder. Write reason FIRST, then category and confidence.")
	return strings.Join(lines, "\n")
}

// fileUserPrompt renders the classification input for one file.
func fileUserPrompt(req FileRequest) string {
	var lines []string

	if len(req.Ancestors) > 0 {
		lines = append(lines, "Ancestor context (root -> parent):")
		for i, desc := range req.Ancestors {
			lines = append(lines, fmt.Sprintf("  [%d] %s", i, desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"File: "+req.Path,
		"Name: "+req.Name,
		"Parent folder: "+req.FolderPath,
	)

	if ext := strings.ToLower(path.Ext(req.Name)); ext != "" {
		lines = append(lines, "Extension: "+ext)
	}

	if req.Description != "" {
		lines = append(lines, "Description: "+req.Description)
	} else {
		lines = append(lines, "Description: [none available]")
	}

	if len(req.Siblings) > 0 {
		shown := req.Siblings
		if len(shown) > MaxSiblingsShown {
			shown = shown[:MaxSiblingsShown]
		}
		lines = append(lines, fmt.Sprintf("\nSibling files in same directory (%d total):", len(req.Siblings)))
		for _, name := range shown {
			lines = append(lines, "  - "+name)
		}
		if extra := len(req.Siblings) - MaxSiblingsShown; extra > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", extra))
		}
	}

	lines = append(lines, "\nClassify this file. Write reason FIRST, then category and confidence.")
	return strings.Join(lines, "\n")
}
