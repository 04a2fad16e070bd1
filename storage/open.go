// Package storage provides the local persistence backends for the prompt
// library: JSON files in a data directory, or a SQLite database.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	// Both SQLite drivers are registered; configuration picks one.
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"prompt-keeper/library"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "prompt-keeper.db"

// Options selects and configures a local backend.
type Options struct {
	Backend string
	DataDir string
	// Driver is the database/sql driver for BackendSQLite: "sqlite"
	// (pure Go) or "sqlite3" (cgo).
	Driver string
}

// Open creates the data directory if needed and opens the chosen backend.
func Open(opts Options) (library.Store, error) {
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataDir)
	case BackendSQLite:
		driver := opts.Driver
		if driver == "" {
			driver = "sqlite"
		}
		return NewSQLStore(driver, filepath.Join(opts.DataDir, DatabaseFile))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
