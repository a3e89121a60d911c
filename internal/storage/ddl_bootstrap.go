package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper creates the destination table for one backend if it does
// not exist, applying the DDL through repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates the report table for the backend registered as kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table)
}
