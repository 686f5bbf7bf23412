package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// FileEntry is one row of the file table.
type FileEntry struct {
	UUID         string
	FileName     string
	Description  string
	OriginalPath string
	RelativePath string
	ExtraInfo    string
	UpdateTime   string
}

// Run records one completed planning run.
type Run struct {
	ID              int64
	RunUUID         string
	SourceRoot      string
	Provider        string
	Model           string
	Threshold       float64
	TotalMappings   int
	FilesViaFolder  int
	FilesIndividual int
	SkippedFolders  int
	CreatedAt       time.Time
}

// CourseDB implements course metadata persistence on SQLite
type CourseDB struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New opens (or creates) the course database and applies migrations.
func New(dbPath string) (*CourseDB, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &CourseDB{db: db}, nil
}

// Close closes the database connection
func (c *CourseDB) Close() error {
	return c.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// UpsertFile inserts or replaces a file row. A missing UUID gets a
// fresh one, written back to the entry.
func (c *CourseDB) UpsertFile(ctx context.Context, entry *FileEntry) error {
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	if entry.UpdateTime == "" {
		entry.UpdateTime = time.Now().Format(time.RFC3339)
	}

	query := `
		INSERT INTO file (uuid, file_name, description, original_path, relative_path, extra_info, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			file_name = excluded.file_name,
			description = excluded.description,
			original_path = excluded.original_path,
			relative_path = excluded.relative_path,
			extra_info = excluded.extra_info,
			update_time = excluded.update_time
	`
	_, err := c.db.ExecContext(ctx, query,
		entry.UUID, entry.FileName, entry.Description,
		nullable(entry.OriginalPath), nullable(entry.RelativePath),
		nullable(entry.ExtraInfo), entry.UpdateTime)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}
	return nil
}

// GetFile retrieves one file row by UUID.
func (c *CourseDB) GetFile(ctx context.Context, id string) (*FileEntry, error) {
	return c.getFileWithQuerier(ctx, c.db, id)
}

func (c *CourseDB) getFileWithQuerier(ctx context.Context, q querier, id string) (*FileEntry, error) {
	query := `
		SELECT uuid, file_name, description, original_path, relative_path, extra_info, update_time
		FROM file
		WHERE uuid = ?
	`
	var entry FileEntry
	var originalPath, relativePath, extraInfo, updateTime sql.NullString
	err := q.QueryRowContext(ctx, query, id).Scan(
		&entry.UUID, &entry.FileName, &entry.Description,
		&originalPath, &relativePath, &extraInfo, &updateTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.OriginalPath = originalPath.String
	entry.RelativePath = relativePath.String
	entry.ExtraInfo = extraInfo.String
	entry.UpdateTime = updateTime.String
	return &entry, nil
}

// LoadFileIndex loads every file row into an index keyed by file name.
// Rows without a usable name are dropped; the first row for a name
// wins when names repeat.
func (c *CourseDB) LoadFileIndex(ctx context.Context) (map[string]FileEntry, error) {
	query := `
		SELECT uuid, file_name, description, original_path, relative_path, extra_info
		FROM file
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load file index: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	index := make(map[string]FileEntry)
	for rows.Next() {
		var entry FileEntry
		var fileName, description, originalPath, relativePath, extraInfo sql.NullString
		if err := rows.Scan(&entry.UUID, &fileName, &description, &originalPath, &relativePath, &extraInfo); err != nil {
			return nil, err
		}

		name := fileName.String
		if name == "" && relativePath.String != "" {
			name = path.Base(relativePath.String)
		}
		if name == "" {
			continue
		}

		entry.FileName = name
		entry.Description = description.String
		entry.OriginalPath = originalPath.String
		entry.RelativePath = relativePath.String
		entry.ExtraInfo = extraInfo.String

		if _, exists := index[name]; !exists {
			index[name] = entry
		}
	}
	return index, rows.Err()
}

// UUIDsForFiles looks up UUIDs for a list of file names. Names with no
// row are silently dropped.
func (c *CourseDB) UUIDsForFiles(ctx context.Context, fileNames []string) ([]string, error) {
	var uuids []string
	for _, name := range fileNames {
		var id string
		err := c.db.QueryRowContext(ctx, "SELECT uuid FROM file WHERE file_name = ?", name).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		uuids = append(uuids, id)
	}
	return uuids, nil
}

// BulkUpdateFolderDescription merges folder_description into the
// extra_info JSON of every given row and bumps update_time. Existing
// JSON objects are merged into, JSON arrays are preserved under
// "_original", and unparseable blobs are replaced.
func (c *CourseDB) BulkUpdateFolderDescription(ctx context.Context, uuids []string, folderDescription string) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updated := 0
	now := time.Now().Format(time.RFC3339)

	for _, id := range uuids {
		entry, err := c.getFileWithQuerier(ctx, tx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return 0, err
		}

		merged, err := mergeExtraInfo(entry.ExtraInfo, folderDescription)
		if err != nil {
			return 0, err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE file SET extra_info = ?, update_time = ? WHERE uuid = ?",
			merged, now, id)
		if err != nil {
			return 0, fmt.Errorf("failed to update extra_info for %s: %w", id, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}

// mergeExtraInfo builds the new extra_info blob for one row.
func mergeExtraInfo(raw, folderDescription string) (string, error) {
	info := map[string]interface{}{}

	if raw != "" {
		var parsed interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			switch v := parsed.(type) {
			case map[string]interface{}:
				info = v
			case []interface{}:
				info = map[string]interface{}{"_original": v}
			}
		}
	}

	info["folder_description"] = folderDescription

	out, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("marshal extra_info: %w", err)
	}
	return string(out), nil
}

// PropagateFolderDescription resolves file names to UUIDs and writes
// the folder description into their extra_info.
func (c *CourseDB) PropagateFolderDescription(ctx context.Context, fileNames []string, description string) error {
	uuids, err := c.UUIDsForFiles(ctx, fileNames)
	if err != nil {
		return err
	}
	if len(uuids) == 0 {
		return nil
	}
	_, err = c.BulkUpdateFolderDescription(ctx, uuids, description)
	return err
}

// RecordRun persists a completed planning run. A missing run UUID gets
// a fresh one, written back.
func (c *CourseDB) RecordRun(ctx context.Context, run *Run) error {
	if run.RunUUID == "" {
		run.RunUUID = uuid.NewString()
	}

	query := `
		INSERT INTO runs (run_uuid, source_root, provider, model, threshold,
			total_mappings, files_via_folder, files_individual, skipped_folders, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := c.db.ExecContext(ctx, query,
		run.RunUUID, run.SourceRoot, run.Provider, run.Model, run.Threshold,
		run.TotalMappings, run.FilesViaFolder, run.FilesIndividual, run.SkippedFolders, now)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	run.CreatedAt = now
	return nil
}

// ListRuns returns the runs recorded for a source root, newest first.
func (c *CourseDB) ListRuns(ctx context.Context, sourceRoot string) ([]Run, error) {
	query := `
		SELECT id, run_uuid, source_root, provider, model, threshold,
			total_mappings, files_via_folder, files_individual, skipped_folders, created_at
		FROM runs
		WHERE source_root = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := c.db.QueryContext(ctx, query, sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.RunUUID, &run.SourceRoot, &run.Provider, &run.Model,
			&run.Threshold, &run.TotalMappings, &run.FilesViaFolder,
			&run.FilesIndividual, &run.SkippedFolders, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FileCount returns the number of file rows.
func (c *CourseDB) FileCount(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM file").Scan(&n)
	return n, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
