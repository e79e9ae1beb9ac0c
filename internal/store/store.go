// Package store persists whole documents by name. Callers read and write a
// document in one piece; there are no partial updates.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when no document has the given name.
var ErrNotFound = errors.New("store: document not found")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store reads and writes whole documents.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// BaseDir resolves relative document names for the file backend.
	BaseDir string
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string
}

// Open returns the backend named in opts. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.BaseDir), nil
	case BackendSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
