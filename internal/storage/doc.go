// Package storage persists course file metadata in SQLite.
//
// The file table mirrors the ingestion pipeline's schema: one row per
// known course file with a UUID, a description, and a free-form
// extra_info JSON blob. The runs table records each planning run for
// later inspection.
//
// Two drivers are supported via build tags. The default build uses the
// pure Go modernc.org/sqlite driver; building with the sqlite_fast tag
// switches to the CGO-based mattn/go-sqlite3 driver.
package storage
