// Package storage defines the Tabular Sink contract and a registry of
// backends selected by kind. Backends register themselves from init; import
// reportetl/internal/storage/all to enable every built-in one.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is an open connection to a tabular sink.
type Repository interface {
	// CopyFrom inserts rows, aligned to columns, into the configured table
	// as one all-or-nothing batch and returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	Close()
}

// Config selects a backend and carries its connection settings. When DSN is
// empty, backends that support it build one from the discrete fields.
type Config struct {
	Kind string
	DSN  string

	Server   string
	Database string
	AuthMode string // "sql" | "windows" | "azure"
	User     string
	Password string

	Table   string
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// again replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the Repository registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
